package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/logcheck/internal/config"
	"github.com/edvin/logcheck/internal/logging"
	"github.com/edvin/logcheck/internal/notify"
	"github.com/edvin/logcheck/internal/scan"
)

// logcheck runs one scan immediately and prints the report. Exit 0
// means the check completed, findings or not; exit 1 means the check
// itself could not run or a requested mail was not delivered.
func main() {
	os.Exit(run())
}

func run() int {
	days := flag.Int("days", 0, "number of dates to check (default BACKUP_CHECK_DAYS)")
	offset := flag.Int("offset", -1, "start day offset, 0 checks from today (default BACKUP_CHECK_START_DAY_OFFSET)")
	base := flag.String("base", "", "log tree to scan (default LOG_BASE_DIR)")
	output := flag.String("output", "", "report directory (default OUTPUT_DIR)")
	sendMail := flag.Bool("mail", false, "mail the findings report when the scan is dirty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	if *base != "" {
		cfg.LogBaseDir = *base
	}
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *days > 0 {
		cfg.CheckDays = *days
	}
	if *offset >= 0 {
		cfg.CheckStartDayOffset = *offset
	}

	if err := cfg.Validate("logcheck"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return 1
	}

	logger := logging.NewLogger(cfg)

	keywords, err := config.LoadList(cfg.KeywordsFile, config.DefaultKeywords)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load keywords: %v\n", err)
		return 1
	}
	required, err := config.LoadList(cfg.RequiredFilesFile, config.DefaultRequiredFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load required files: %v\n", err)
		return 1
	}

	ctx := context.Background()
	started := time.Now()
	window := scan.NewWindow(cfg.LogBaseDir, started, cfg.CheckStartDayOffset, cfg.CheckDays)

	rep, err := scan.NewScanner(logger).Scan(ctx, window, scan.NewRequiredFiles(required), scan.NewKeywords(keywords))
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		return 1
	}
	rep.ServerName = cfg.Hostname

	duration := time.Since(started)
	findingsPath, err := scan.WriteFiles(cfg.OutputDir, rep, duration)
	if err != nil {
		// Findings still reach the operator on stdout.
		fmt.Fprintf(os.Stderr, "warning: report files not written: %v\n", err)
	}

	fmt.Print(scan.RenderActivity(rep, duration))

	if !rep.Clean() && *sendMail {
		if err := mailFindings(ctx, logger, cfg, rep, findingsPath); err != nil {
			fmt.Fprintf(os.Stderr, "mail failed: %v\n", err)
			return 1
		}
		fmt.Fprintln(os.Stderr, "findings mailed")
	}

	return 0
}

func mailFindings(ctx context.Context, logger zerolog.Logger, cfg *config.Config, rep *scan.Report, attachment string) error {
	if cfg.SMTPServer == "" || cfg.FromEmail == "" || len(cfg.Recipients) == 0 {
		return fmt.Errorf("SMTP_SERVER, SMTP_FROM_EMAIL and DEFAULT_RECIPIENTS must be set for -mail")
	}

	sender, err := notify.NewSMTPSender(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	return notify.New(logger, cfg, sender).Notify(ctx, notify.Message{
		Severity:   notify.SeverityError,
		ScriptName: "logcheck",
		Body:       scan.RenderFindings(rep),
		Attachment: attachment,
	})
}
