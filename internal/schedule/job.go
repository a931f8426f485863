package schedule

import (
	"time"

	"github.com/edvin/logcheck/internal/config"
	"github.com/edvin/logcheck/internal/runner"
)

// JobDefinition is a fully resolved job: spec fields merged with global
// defaults and bound to its runner. MaxRetries counts total attempts,
// so MaxRetries 3 means one initial run plus up to two retries.
type JobDefinition struct {
	Name            string
	Schedule        string
	Description     string
	Runner          runner.Runner
	NotifyOnSuccess bool

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Defaults are the global execution limits jobs inherit unless their
// spec overrides them.
type Defaults struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// NewJob resolves one job spec against the global defaults. Zero spec
// values inherit; nonzero values override.
func NewJob(spec config.JobSpec, r runner.Runner, d Defaults) JobDefinition {
	j := JobDefinition{
		Name:            spec.Name,
		Schedule:        spec.Schedule,
		Description:     spec.Description,
		Runner:          r,
		NotifyOnSuccess: spec.NotifyOnSuccess,
		Timeout:         d.Timeout,
		MaxRetries:      d.MaxRetries,
		RetryDelay:      d.RetryDelay,
	}
	if spec.TimeoutSeconds > 0 {
		j.Timeout = time.Duration(spec.TimeoutSeconds) * time.Second
	}
	if spec.MaxRetries > 0 {
		j.MaxRetries = spec.MaxRetries
	}
	if spec.RetryDelaySeconds > 0 {
		j.RetryDelay = time.Duration(spec.RetryDelaySeconds) * time.Second
	}
	return j
}
