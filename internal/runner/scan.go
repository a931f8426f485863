package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/logcheck/internal/scan"
)

// ScanConfig resolves one scan job: where to look, how far back, and
// what to look for.
type ScanConfig struct {
	BaseDir        string
	OutputDir      string
	ServerName     string
	Days           int
	StartDayOffset int
	Required       scan.RequiredFiles
	Keywords       scan.Keywords
}

// Scan is the built-in log compliance runner. Each run resolves the
// date window against the wall clock at that moment, so a job scheduled
// across midnight checks the dates current at execution time.
type Scan struct {
	logger  zerolog.Logger
	name    string
	scanner *scan.Scanner
	cfg     ScanConfig
	now     func() time.Time
}

func NewScan(logger zerolog.Logger, name string, scanner *scan.Scanner, cfg ScanConfig) *Scan {
	return &Scan{
		logger:  logger.With().Str("component", "scan-runner").Logger(),
		name:    name,
		scanner: scanner,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Scan) Name() string { return s.name }

func (s *Scan) Run(ctx context.Context) Result {
	started := time.Now()
	window := scan.NewWindow(s.cfg.BaseDir, s.now(), s.cfg.StartDayOffset, s.cfg.Days)

	s.logger.Debug().
		Str("job", s.name).
		Str("base_dir", window.BaseDir).
		Int("days", window.Days).
		Msg("scanning log tree")

	rep, err := s.scanner.Scan(ctx, window, s.cfg.Required, s.cfg.Keywords)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Status: StatusTimedOut, Detail: err.Error()}
		}
		return Result{Status: StatusFailed, Detail: err.Error()}
	}
	rep.ServerName = s.cfg.ServerName

	// Report files are best effort. A full disk must not turn a clean
	// scan into a failure, and a dirty scan still notifies without them.
	findingsPath, werr := scan.WriteFiles(s.cfg.OutputDir, rep, time.Since(started))
	if werr != nil {
		s.logger.Error().Err(werr).Str("job", s.name).Msg("writing report files failed")
	}

	if rep.Clean() {
		return Result{
			Status: StatusSucceeded,
			Detail: fmt.Sprintf("checked %d date(s) under %s, no findings", len(rep.Days), s.cfg.BaseDir),
		}
	}

	detail := scan.RenderFindings(rep)
	if werr != nil {
		detail += fmt.Sprintf("\nreport files not written: %v\n", werr)
	}
	return Result{Status: StatusFailed, Detail: detail, Attachment: findingsPath}
}
