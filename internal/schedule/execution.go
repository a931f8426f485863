package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/edvin/logcheck/internal/runner"
)

// Outcome classifies how one attempt or attempt chain ended. The first
// four mirror runner statuses; GaveUp means the whole chain exhausted
// its retry budget.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeWarning   Outcome = "warning"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeGaveUp    Outcome = "gave_up"
)

// Execution records a single attempt. Every attempt gets its own ID so
// log lines from retries of the same firing stay distinguishable.
type Execution struct {
	ID        uuid.UUID `json:"id"`
	JobName   string    `json:"job_name"`
	Attempt   int       `json:"attempt"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Outcome   Outcome   `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
}

func outcomeForStatus(s runner.Status) Outcome {
	switch s {
	case runner.StatusSucceeded:
		return OutcomeSucceeded
	case runner.StatusWarning:
		return OutcomeWarning
	case runner.StatusTimedOut:
		return OutcomeTimedOut
	default:
		return OutcomeFailed
	}
}
