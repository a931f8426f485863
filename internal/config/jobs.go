package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// JobSpec is one entry in the jobs file. Exactly one of Script and Scan
// must be set: Script runs an external command through the shell, Scan
// runs the built-in log compliance scanner. Timeout, MaxRetries and
// RetryDelay override the global limits when nonzero.
type JobSpec struct {
	Name            string    `yaml:"name" validate:"required"`
	Schedule        string    `yaml:"schedule" validate:"required,cron"`
	Script          string    `yaml:"script"`
	Scan            *ScanSpec `yaml:"scan"`
	Description     string    `yaml:"description"`
	Enabled         bool      `yaml:"enabled"`
	NotifyOnSuccess bool      `yaml:"notify_on_success"`

	TimeoutSeconds    int `yaml:"timeout" validate:"min=0"`
	MaxRetries        int `yaml:"max_retries" validate:"min=0"`
	RetryDelaySeconds int `yaml:"retry_delay" validate:"min=0"`
}

// ScanSpec configures a built-in scanner job. Zero values inherit the
// global BACKUP_CHECK_DAYS / BACKUP_CHECK_START_DAY_OFFSET settings.
type ScanSpec struct {
	Days           int `yaml:"days" validate:"min=0"`
	StartDayOffset int `yaml:"start_day_offset" validate:"min=0"`
}

type jobsFile struct {
	Jobs []JobSpec `yaml:"jobs"`
}

var validate = validator.New()

func init() {
	validate.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
}

// LoadJobs reads and validates the job definitions. The returned slice
// preserves file order and is treated as immutable for the process
// lifetime; any structural problem is a startup error.
func LoadJobs(path string) ([]JobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	var f jobsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse jobs file: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("jobs file %s defines no jobs", path)
	}

	seen := make(map[string]bool, len(f.Jobs))
	for i := range f.Jobs {
		j := &f.Jobs[i]
		if err := validate.Struct(j); err != nil {
			return nil, fmt.Errorf("job %q: %w", j.Name, err)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("duplicate job name %q", j.Name)
		}
		seen[j.Name] = true

		if j.Script == "" && j.Scan == nil {
			return nil, fmt.Errorf("job %q: needs either script or scan", j.Name)
		}
		if j.Script != "" && j.Scan != nil {
			return nil, fmt.Errorf("job %q: script and scan are mutually exclusive", j.Name)
		}
	}

	return f.Jobs, nil
}
