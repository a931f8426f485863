package runner

import "context"

// Status is the outcome of one execution attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusWarning   Status = "warning"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// Result is what one attempt produced. Detail is human-readable and
// becomes the notification body when the attempt chain ends in failure
// or warning.
type Result struct {
	Status     Status
	Detail     string
	Attachment string // findings report to attach to mail, scan jobs only
}

// Runner is the capability shared by built-in scan jobs and external
// script jobs, so both flow through the same dispatch, retry, and
// timeout machinery. Run must honor ctx cancellation: the orchestrator
// enforces the job timeout through the context deadline.
type Runner interface {
	Name() string
	Run(ctx context.Context) Result
}
