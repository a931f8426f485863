package runner

import (
	"github.com/rs/zerolog"

	"github.com/edvin/logcheck/internal/config"
	"github.com/edvin/logcheck/internal/scan"
)

// ScanEnv carries the globally configured scan inputs that a job spec
// inherits wherever its scan block leaves a value unset.
type ScanEnv struct {
	Scanner        *scan.Scanner
	BaseDir        string
	OutputDir      string
	ServerName     string
	Days           int
	StartDayOffset int
	Required       scan.RequiredFiles
	Keywords       scan.Keywords
}

// FromSpec builds the runner for one validated job spec: the built-in
// scanner when a scan block is present, a shell script otherwise.
func FromSpec(logger zerolog.Logger, spec config.JobSpec, env ScanEnv) Runner {
	if spec.Scan == nil {
		return NewScript(logger, spec.Name, spec.Script)
	}

	cfg := ScanConfig{
		BaseDir:        env.BaseDir,
		OutputDir:      env.OutputDir,
		ServerName:     env.ServerName,
		Days:           env.Days,
		StartDayOffset: env.StartDayOffset,
		Required:       env.Required,
		Keywords:       env.Keywords,
	}
	if spec.Scan.Days > 0 {
		cfg.Days = spec.Scan.Days
	}
	if spec.Scan.StartDayOffset > 0 {
		cfg.StartDayOffset = spec.Scan.StartDayOffset
	}

	return NewScan(logger, spec.Name, env.Scanner, cfg)
}
