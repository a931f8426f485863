package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/edvin/logcheck/internal/config"
	"github.com/edvin/logcheck/internal/health"
	"github.com/edvin/logcheck/internal/logging"
	"github.com/edvin/logcheck/internal/notify"
	"github.com/edvin/logcheck/internal/runner"
	"github.com/edvin/logcheck/internal/scan"
	"github.com/edvin/logcheck/internal/schedule"
)

func main() {
	_, _ = maxprocs.Set()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate("logcheckd"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	// Structural problems in the job or list files are startup errors:
	// a daemon that cannot know its jobs must not come up.
	specs, err := config.LoadJobs(cfg.JobsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load jobs")
	}
	keywords, err := config.LoadList(cfg.KeywordsFile, config.DefaultKeywords)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load keywords")
	}
	required, err := config.LoadList(cfg.RequiredFilesFile, config.DefaultRequiredFiles)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load required files")
	}
	if _, err := os.ReadDir(cfg.LogBaseDir); err != nil {
		logger.Fatal().Err(err).Msg("log base directory not readable")
	}

	sender, err := notify.NewSMTPSender(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure smtp transport")
	}
	notifier := notify.New(logger, cfg, sender)
	scanner := scan.NewScanner(logger)

	env := runner.ScanEnv{
		Scanner:        scanner,
		BaseDir:        cfg.LogBaseDir,
		OutputDir:      cfg.OutputDir,
		ServerName:     cfg.Hostname,
		Days:           cfg.CheckDays,
		StartDayOffset: cfg.CheckStartDayOffset,
		Required:       scan.NewRequiredFiles(required),
		Keywords:       scan.NewKeywords(keywords),
	}
	defaults := schedule.Defaults{
		Timeout:    cfg.ScriptTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}

	var jobs []schedule.JobDefinition
	for _, spec := range specs {
		if !spec.Enabled {
			logger.Info().Str("job", spec.Name).Msg("job disabled, skipping")
			continue
		}
		jobs = append(jobs, schedule.NewJob(spec, runner.FromSpec(logger, spec, env), defaults))
	}
	if len(jobs) == 0 {
		logger.Fatal().Msg("no enabled jobs configured")
	}

	checker := health.NewChecker(logger, cfg)
	orch := schedule.NewOrchestrator(logger, jobs, schedule.Options{
		MaxConcurrent:       cfg.MaxConcurrentScripts,
		HealthCheckInterval: cfg.HealthCheckInterval,
		Hostname:            cfg.Hostname,
		Notifier:            notifier,
		SelfCheck: func(ctx context.Context) error {
			return checker.Run(ctx).Err()
		},
	})

	srv := health.NewServer(logger, cfg.StatusAddr, orch, checker)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Fatal().Err(err).Msg("status server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Int("jobs", len(jobs)).
		Str("status_addr", cfg.StatusAddr).
		Msg("logcheckd starting")

	if err := orch.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("orchestrator failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("status server shutdown failed")
	}

	logger.Info().Msg("logcheckd stopped")
}
