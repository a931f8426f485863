package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the environment-sourced configuration shared by the daemon
// and the one-shot CLI. Load applies defaults; Validate reports every
// problem at once so a misconfigured container fails with a single clear
// error before scheduling begins.
type Config struct {
	// SMTP transport. UseTLS means STARTTLS on a plaintext port, UseSSL
	// means an implicit TLS connection; the two are mutually exclusive.
	SMTPServer   string
	SMTPPort     int
	SMTPUseTLS   bool
	SMTPUseSSL   bool
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	Recipients   []string

	// Hostname appears in mail subjects and log context. Defaults to
	// os.Hostname when SYSTEM_HOSTNAME is unset.
	Hostname string
	LogLevel string

	// LogBaseDir is the root of the date-partitioned tree the scanner
	// walks; OutputDir receives the generated report files.
	LogBaseDir string
	OutputDir  string

	JobsFile          string
	KeywordsFile      string
	RequiredFilesFile string

	HealthCheckInterval  time.Duration
	ScriptTimeout        time.Duration
	MaxConcurrentScripts int
	MaxRetries           int
	RetryDelay           time.Duration

	CheckDays           int
	CheckStartDayOffset int

	SubjectError   string
	SubjectWarning string
	SubjectSuccess string

	StatusAddr    string
	MinFreeDiskMB int
}

func Load() (*Config, error) {
	hostname := getEnv("SYSTEM_HOSTNAME", "")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	var recipients []string
	for _, r := range strings.Split(getEnv("DEFAULT_RECIPIENTS", ""), ",") {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}

	cfg := &Config{
		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("SMTP_FROM_EMAIL", ""),
		FromName:     getEnv("SMTP_FROM_NAME", "Log Checker"),
		Recipients:   recipients,

		Hostname: hostname,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LogBaseDir: getEnv("LOG_BASE_DIR", "/var/log/checked"),
		OutputDir:  getEnv("OUTPUT_DIR", "/var/log/logcheck"),

		JobsFile:          getEnv("JOBS_FILE", "/etc/logcheck/jobs.yaml"),
		KeywordsFile:      getEnv("KEYWORDS_FILE", "/etc/logcheck/keywords.txt"),
		RequiredFilesFile: getEnv("REQUIRED_FILES_FILE", "/etc/logcheck/required_files.txt"),

		SubjectError:   getEnv("SUBJECT_TEMPLATE_ERROR", "[FEHLER] {hostname} - {script_name} - {timestamp}"),
		SubjectWarning: getEnv("SUBJECT_TEMPLATE_WARNING", "[WARNUNG] {hostname} - {script_name} - {timestamp}"),
		SubjectSuccess: getEnv("SUBJECT_TEMPLATE_SUCCESS", "[OK] {hostname} - {script_name} - {timestamp}"),

		StatusAddr: getEnv("STATUS_ADDR", ":9090"),
	}

	var err error
	if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.SMTPUseTLS, err = getEnvBool("SMTP_USE_TLS", true); err != nil {
		return nil, err
	}
	if cfg.SMTPUseSSL, err = getEnvBool("SMTP_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.HealthCheckInterval, err = getEnvSeconds("HEALTH_CHECK_INTERVAL", 30); err != nil {
		return nil, err
	}
	if cfg.ScriptTimeout, err = getEnvSeconds("SCRIPT_TIMEOUT", 300); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentScripts, err = getEnvInt("MAX_CONCURRENT_SCRIPTS", 3); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getEnvInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getEnvSeconds("RETRY_DELAY", 60); err != nil {
		return nil, err
	}
	if cfg.CheckDays, err = getEnvInt("BACKUP_CHECK_DAYS", 1); err != nil {
		return nil, err
	}
	if cfg.CheckStartDayOffset, err = getEnvInt("BACKUP_CHECK_START_DAY_OFFSET", 0); err != nil {
		return nil, err
	}
	if cfg.MinFreeDiskMB, err = getEnvInt("MIN_FREE_DISK_MB", 200); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the fields the named service depends on. The daemon
// needs the full set including SMTP; the one-shot CLI only needs the
// scan paths (it validates mail settings itself when asked to send).
func (c *Config) Validate(service string) error {
	var missing []string

	if c.LogBaseDir == "" {
		missing = append(missing, "LOG_BASE_DIR")
	}
	if c.OutputDir == "" {
		missing = append(missing, "OUTPUT_DIR")
	}

	if service == "logcheckd" {
		if c.SMTPServer == "" {
			missing = append(missing, "SMTP_SERVER")
		}
		if c.FromEmail == "" {
			missing = append(missing, "SMTP_FROM_EMAIL")
		}
		if len(c.Recipients) == 0 {
			missing = append(missing, "DEFAULT_RECIPIENTS")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if c.SMTPUseTLS && c.SMTPUseSSL {
		return fmt.Errorf("SMTP_USE_TLS and SMTP_USE_SSL are mutually exclusive")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if c.MaxConcurrentScripts < 1 {
		return fmt.Errorf("MAX_CONCURRENT_SCRIPTS must be at least 1")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1")
	}
	if c.ScriptTimeout <= 0 {
		return fmt.Errorf("SCRIPT_TIMEOUT must be positive")
	}
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("HEALTH_CHECK_INTERVAL must be positive")
	}
	if c.CheckDays < 1 {
		return fmt.Errorf("BACKUP_CHECK_DAYS must be at least 1")
	}
	if c.CheckStartDayOffset < 0 {
		return fmt.Errorf("BACKUP_CHECK_START_DAY_OFFSET must not be negative")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %q", key, v)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: not a boolean: %q", key, v)
	}
	return b, nil
}

// getEnvSeconds reads a whole number of seconds, the unit the original
// cron-oriented deployment used for all intervals.
func getEnvSeconds(key string, fallback int) (time.Duration, error) {
	n, err := getEnvInt(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
