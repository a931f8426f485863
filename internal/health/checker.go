package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/edvin/logcheck/internal/config"
)

var environmentHealthy = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "logcheck_environment_healthy",
		Help: "1 when the last environment self-check passed completely",
	},
)

// Check is one environment probe result.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Results is one full self-check pass.
type Results struct {
	Checks    []Check   `json:"checks"`
	CheckedAt time.Time `json:"checked_at"`
}

func (r Results) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Err folds the failed checks into a single error, nil when all passed.
func (r Results) Err() error {
	var failed []string
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, fmt.Sprintf("%s: %s", c.Name, c.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d check(s) failed: %s", len(failed), strings.Join(failed, "; "))
}

// Checker probes the environment the daemon depends on: the scanned
// tree must be readable, the report directory writable with space left,
// and the mail settings complete. It runs at startup and on every
// supervision tick.
type Checker struct {
	logger zerolog.Logger
	cfg    *config.Config
}

func NewChecker(logger zerolog.Logger, cfg *config.Config) *Checker {
	return &Checker{
		logger: logger.With().Str("component", "health-checker").Logger(),
		cfg:    cfg,
	}
}

func (c *Checker) Run(_ context.Context) Results {
	r := Results{
		CheckedAt: time.Now(),
		Checks: []Check{
			c.checkBaseDir(),
			c.checkOutputDir(),
			c.checkDiskSpace(),
			c.checkSMTPConfig(),
		},
	}

	if r.Healthy() {
		environmentHealthy.Set(1)
	} else {
		environmentHealthy.Set(0)
		for _, chk := range r.Checks {
			if !chk.OK {
				c.logger.Warn().Str("check", chk.Name).Str("detail", chk.Detail).Msg("environment check failed")
			}
		}
	}

	return r
}

func (c *Checker) checkBaseDir() Check {
	chk := Check{Name: "log_base_dir"}
	if _, err := os.ReadDir(c.cfg.LogBaseDir); err != nil {
		chk.Detail = err.Error()
		return chk
	}
	chk.OK = true
	return chk
}

func (c *Checker) checkOutputDir() Check {
	chk := Check{Name: "output_dir"}

	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		chk.Detail = err.Error()
		return chk
	}

	probe := filepath.Join(c.cfg.OutputDir, fmt.Sprintf(".probe-%d", os.Getpid()))
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		chk.Detail = fmt.Sprintf("not writable: %v", err)
		return chk
	}
	if err := os.Remove(probe); err != nil {
		chk.Detail = fmt.Sprintf("probe cleanup failed: %v", err)
		return chk
	}

	chk.OK = true
	return chk
}

func (c *Checker) checkDiskSpace() Check {
	chk := Check{Name: "disk_space"}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(c.cfg.OutputDir, &stat); err != nil {
		chk.Detail = err.Error()
		return chk
	}
	freeMB := int(stat.Bavail * uint64(stat.Bsize) / (1024 * 1024))

	if freeMB < c.cfg.MinFreeDiskMB {
		chk.Detail = fmt.Sprintf("%d MB free, need at least %d MB", freeMB, c.cfg.MinFreeDiskMB)
		return chk
	}

	chk.OK = true
	chk.Detail = fmt.Sprintf("%d MB free", freeMB)
	return chk
}

func (c *Checker) checkSMTPConfig() Check {
	chk := Check{Name: "smtp_config"}

	var problems []string
	if c.cfg.SMTPServer == "" {
		problems = append(problems, "SMTP_SERVER unset")
	}
	if c.cfg.SMTPPort < 1 || c.cfg.SMTPPort > 65535 {
		problems = append(problems, "SMTP_PORT out of range")
	}
	if c.cfg.FromEmail == "" {
		problems = append(problems, "SMTP_FROM_EMAIL unset")
	}
	if len(c.cfg.Recipients) == 0 {
		problems = append(problems, "DEFAULT_RECIPIENTS unset")
	}
	if c.cfg.SMTPUseTLS && c.cfg.SMTPUseSSL {
		problems = append(problems, "TLS and SSL both enabled")
	}

	if len(problems) > 0 {
		chk.Detail = strings.Join(problems, ", ")
		return chk
	}

	chk.OK = true
	return chk
}
