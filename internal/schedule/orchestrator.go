package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/edvin/logcheck/internal/notify"
	"github.com/edvin/logcheck/internal/runner"
)

// Notifier is the slice of the mail notifier the orchestrator needs.
type Notifier interface {
	Notify(ctx context.Context, m notify.Message) error
}

const (
	notifyTimeout    = 2 * time.Minute
	selfCheckTimeout = 10 * time.Second

	// maxStateDetail bounds what the status endpoint retains per job;
	// notification bodies carry the full detail.
	maxStateDetail = 2048
)

// Options configure the orchestrator beyond its job set.
type Options struct {
	MaxConcurrent       int
	HealthCheckInterval time.Duration
	Hostname            string
	Notifier            Notifier

	// SelfCheck runs every supervision tick; its most recent success
	// feeds Healthy. Nil means the tick itself is the only check.
	SelfCheck func(ctx context.Context) error

	// Clock defaults to the wall clock.
	Clock clock.Clock
}

// Orchestrator owns the scheduled jobs: it fires them through the
// schedule substrate, bounds their concurrency with a fixed slot pool,
// retries failures, and escalates through the notifier. One
// orchestrator runs per process.
type Orchestrator struct {
	logger    zerolog.Logger
	clock     clock.Clock
	notifier  Notifier
	selfCheck func(ctx context.Context) error
	hostname  string

	healthInterval time.Duration
	maxConcurrent  int

	jobs      []JobDefinition
	sem       *semaphore.Weighted
	substrate *substrate

	// runCtx gates dispatch and retry waits. Attempts themselves run
	// against their own deadline so shutdown never kills one mid-run.
	runCtx    context.Context
	accepting atomic.Bool
	started   atomic.Bool
	wg        sync.WaitGroup

	mu              sync.Mutex
	states          map[string]*jobState
	entryIDs        map[string]cron.EntryID
	lastSelfCheckOK time.Time
	running         int
}

type jobState struct {
	running     int
	skips       int
	lastOutcome Outcome
	lastDetail  string
	lastRun     time.Time
}

func NewOrchestrator(logger zerolog.Logger, jobs []JobDefinition, opts Options) *Orchestrator {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	o := &Orchestrator{
		logger:         logger.With().Str("component", "orchestrator").Logger(),
		clock:          clk,
		notifier:       opts.Notifier,
		selfCheck:      opts.SelfCheck,
		hostname:       opts.Hostname,
		healthInterval: opts.HealthCheckInterval,
		maxConcurrent:  opts.MaxConcurrent,
		jobs:           jobs,
		sem:            semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		substrate:      newSubstrate(logger, clk),
		runCtx:         context.Background(),
		states:         make(map[string]*jobState, len(jobs)),
		entryIDs:       make(map[string]cron.EntryID, len(jobs)),
	}
	for _, j := range jobs {
		o.states[j.Name] = &jobState{}
	}
	return o
}

// Run starts scheduling and blocks until ctx is cancelled, supervising
// the substrate and the self-check in between. It returns once
// in-flight work has drained.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.runCtx = ctx
	o.accepting.Store(true)

	if err := o.substrate.Start(o.registerJobs); err != nil {
		o.accepting.Store(false)
		return fmt.Errorf("start schedule substrate: %w", err)
	}
	o.started.Store(true)

	o.logger.Info().
		Int("jobs", len(o.jobs)).
		Int("max_concurrent", o.maxConcurrent).
		Dur("health_check_interval", o.healthInterval).
		Msg("orchestrator started")

	// Seed the self-check so health reports truthfully before the
	// first supervision tick.
	o.superviseOnce(ctx)

	ticker := o.clock.Ticker(o.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.shutdown()
			return nil
		case <-ticker.C:
			o.superviseOnce(ctx)
		}
	}
}

func (o *Orchestrator) registerJobs(c *cron.Cron) error {
	ids := make(map[string]cron.EntryID, len(o.jobs))
	for _, job := range o.jobs {
		job := job
		id, err := c.AddFunc(job.Schedule, func() { o.Dispatch(job) })
		if err != nil {
			return fmt.Errorf("register job %q: %w", job.Name, err)
		}
		ids[job.Name] = id
	}

	o.mu.Lock()
	o.entryIDs = ids
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) superviseOnce(ctx context.Context) {
	if !o.substrate.Alive() {
		o.logger.Error().Msg("schedule substrate stalled, restarting")
		substrateRestartsTotal.Inc()
		if err := o.substrate.Restart(); err != nil {
			o.logger.Error().Err(err).Msg("substrate restart failed")
			return
		}
	}

	if o.selfCheck != nil {
		checkCtx, cancel := context.WithTimeout(ctx, selfCheckTimeout)
		err := o.selfCheck(checkCtx)
		cancel()
		if err != nil {
			selfChecksTotal.WithLabelValues("failure").Inc()
			o.logger.Warn().Err(err).Msg("self-check failed")
			return
		}
	}
	selfChecksTotal.WithLabelValues("success").Inc()

	o.mu.Lock()
	o.lastSelfCheckOK = o.clock.Now()
	o.mu.Unlock()
}

func (o *Orchestrator) shutdown() {
	o.logger.Info().Msg("shutting down, draining running jobs")
	o.accepting.Store(false)

	// Stop scheduling first: once the substrate has drained its entry
	// callbacks no further dispatch can race the final wait.
	<-o.substrate.Stop().Done()
	o.wg.Wait()

	o.started.Store(false)
	o.logger.Info().Msg("orchestrator stopped")
}

// Dispatch handles one scheduled firing. It never blocks the
// scheduler: when every slot is taken the firing is dropped and
// counted, not queued.
func (o *Orchestrator) Dispatch(job JobDefinition) {
	if !o.accepting.Load() {
		o.logger.Debug().Str("job", job.Name).Msg("not accepting work, firing dropped")
		return
	}
	if !o.sem.TryAcquire(1) {
		o.recordSkip(job)
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.sem.Release(1)
		o.runAttempts(o.runCtx, job)
	}()
}

func (o *Orchestrator) recordSkip(job JobDefinition) {
	o.mu.Lock()
	o.state(job.Name).skips++
	o.mu.Unlock()

	jobSkipsTotal.WithLabelValues(job.Name).Inc()
	o.logger.Warn().
		Str("job", job.Name).
		Int("max_concurrent", o.maxConcurrent).
		Msg("all slots busy, firing skipped")
}

// runAttempts drives one firing through its retry budget while holding
// the slot taken at dispatch, so a retrying job cannot multiply its
// concurrency.
func (o *Orchestrator) runAttempts(runCtx context.Context, job JobDefinition) {
	for attempt := 1; ; attempt++ {
		res := o.runOnce(job, attempt)

		switch res.Status {
		case runner.StatusSucceeded:
			if job.NotifyOnSuccess {
				o.send(notify.SeveritySuccess, job.Name, successBody(job, res), "")
			}
			return
		case runner.StatusWarning:
			// Warnings notify once and never retry: the job finished,
			// it just has something to say.
			o.send(notify.SeverityWarning, job.Name, warningBody(job, res), res.Attachment)
			return
		}

		if attempt >= job.MaxRetries {
			o.gaveUp(job, attempt, res)
			return
		}

		o.logger.Warn().
			Str("job", job.Name).
			Int("attempt", attempt).
			Int("max_retries", job.MaxRetries).
			Str("status", string(res.Status)).
			Dur("retry_delay", job.RetryDelay).
			Msg("attempt failed, will retry")

		if job.RetryDelay > 0 {
			select {
			case <-o.clock.After(job.RetryDelay):
			case <-runCtx.Done():
			}
		}
		if runCtx.Err() != nil {
			o.logger.Info().Str("job", job.Name).Msg("shutdown during retry wait, abandoning remaining attempts")
			return
		}
	}
}

func (o *Orchestrator) runOnce(job JobDefinition, attempt int) runner.Result {
	exec := Execution{
		ID:        uuid.New(),
		JobName:   job.Name,
		Attempt:   attempt,
		StartTime: o.clock.Now(),
	}

	o.setRunning(job.Name, 1)
	jobsRunning.Inc()

	// The attempt deadline is detached from the signal context so a
	// shutdown stops new work but lets this attempt finish.
	ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
	res := job.Runner.Run(ctx)
	cancel()

	jobsRunning.Dec()
	o.setRunning(job.Name, -1)

	exec.EndTime = o.clock.Now()
	exec.Outcome = outcomeForStatus(res.Status)
	exec.Detail = res.Detail
	duration := exec.EndTime.Sub(exec.StartTime)

	jobRunsTotal.WithLabelValues(job.Name, string(exec.Outcome)).Inc()
	jobDuration.WithLabelValues(job.Name).Observe(duration.Seconds())
	o.recordExecution(exec)

	var evt *zerolog.Event
	switch exec.Outcome {
	case OutcomeSucceeded:
		evt = o.logger.Info()
	case OutcomeWarning:
		evt = o.logger.Warn()
	default:
		evt = o.logger.Error()
	}
	evt.
		Str("execution_id", exec.ID.String()).
		Str("job", job.Name).
		Int("attempt", attempt).
		Str("outcome", string(exec.Outcome)).
		Dur("duration", duration).
		Msg("attempt finished")

	return res
}

// gaveUp ends an attempt chain whose last attempt failed with no
// budget left. Exactly one error notification goes out, carrying the
// last attempt's detail and report file.
func (o *Orchestrator) gaveUp(job JobDefinition, attempts int, last runner.Result) {
	o.mu.Lock()
	o.state(job.Name).lastOutcome = OutcomeGaveUp
	o.mu.Unlock()

	o.logger.Error().
		Str("job", job.Name).
		Int("attempts", attempts).
		Str("last_status", string(last.Status)).
		Msg("job gave up after exhausting retries")

	o.send(notify.SeverityError, job.Name, failureBody(job, attempts, last), last.Attachment)
}

func (o *Orchestrator) send(sev notify.Severity, job, body, attachment string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	err := o.notifier.Notify(ctx, notify.Message{
		Severity:   sev,
		ScriptName: job,
		Body:       body,
		Attachment: attachment,
	})
	if err != nil {
		o.logger.Error().
			Err(err).
			Str("job", job).
			Str("severity", string(sev)).
			Msg("notification failed")
	}
}

// state looks up a job's mutable state; the caller holds o.mu.
func (o *Orchestrator) state(name string) *jobState {
	s, ok := o.states[name]
	if !ok {
		s = &jobState{}
		o.states[name] = s
	}
	return s
}

func (o *Orchestrator) setRunning(name string, delta int) {
	o.mu.Lock()
	o.state(name).running += delta
	o.running += delta
	o.mu.Unlock()
}

func (o *Orchestrator) recordExecution(exec Execution) {
	o.mu.Lock()
	s := o.state(exec.JobName)
	s.lastOutcome = exec.Outcome
	s.lastDetail = clip(exec.Detail, maxStateDetail)
	s.lastRun = exec.StartTime
	o.mu.Unlock()
}

// Ready reports whether the orchestrator has started; Healthy is the
// stricter liveness signal.
func (o *Orchestrator) Ready() bool {
	return o.started.Load()
}

// Healthy reports whether the substrate heartbeats and the self-check
// succeeded within the last two supervision intervals.
func (o *Orchestrator) Healthy() bool {
	if !o.started.Load() {
		return false
	}

	o.mu.Lock()
	last := o.lastSelfCheckOK
	o.mu.Unlock()
	if o.clock.Now().Sub(last) > 2*o.healthInterval {
		return false
	}

	return o.substrate.Alive()
}

// Status is a point-in-time snapshot served by the status endpoint.
type Status struct {
	Hostname       string      `json:"hostname"`
	SubstrateAlive bool        `json:"substrate_alive"`
	Running        int         `json:"running"`
	MaxConcurrent  int         `json:"max_concurrent"`
	LastSelfCheck  time.Time   `json:"last_self_check"`
	Jobs           []JobStatus `json:"jobs"`
}

// JobStatus is the per-job slice of Status, in registration order.
type JobStatus struct {
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	Description string    `json:"description,omitempty"`
	Running     int       `json:"running"`
	Skips       int       `json:"skips"`
	LastOutcome Outcome   `json:"last_outcome,omitempty"`
	LastDetail  string    `json:"last_detail,omitempty"`
	LastRun     time.Time `json:"last_run"`
	NextRun     time.Time `json:"next_run"`
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	st := Status{
		Hostname:      o.hostname,
		Running:       o.running,
		MaxConcurrent: o.maxConcurrent,
		LastSelfCheck: o.lastSelfCheckOK,
		Jobs:          make([]JobStatus, 0, len(o.jobs)),
	}
	ids := make(map[string]cron.EntryID, len(o.entryIDs))
	for name, id := range o.entryIDs {
		ids[name] = id
	}
	for _, j := range o.jobs {
		s := o.state(j.Name)
		st.Jobs = append(st.Jobs, JobStatus{
			Name:        j.Name,
			Schedule:    j.Schedule,
			Description: j.Description,
			Running:     s.running,
			Skips:       s.skips,
			LastOutcome: s.lastOutcome,
			LastDetail:  s.lastDetail,
			LastRun:     s.lastRun,
		})
	}
	o.mu.Unlock()

	// Substrate queries happen outside the state lock; registration
	// takes the two locks in the opposite order.
	st.SubstrateAlive = o.substrate.Alive()
	for i := range st.Jobs {
		if id, ok := ids[st.Jobs[i].Name]; ok {
			st.Jobs[i].NextRun = o.substrate.next(id)
		}
	}
	return st
}

func failureBody(job JobDefinition, attempts int, last runner.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %q failed after %d attempt(s).\n", job.Name, attempts)
	if job.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", job.Description)
	}
	fmt.Fprintf(&b, "Last status: %s\n", last.Status)
	if last.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", last.Detail)
	}
	return b.String()
}

func warningBody(job JobDefinition, res runner.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %q finished with a warning.\n", job.Name)
	if job.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", job.Description)
	}
	if res.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", res.Detail)
	}
	return b.String()
}

func successBody(job JobDefinition, res runner.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %q completed successfully.\n", job.Name)
	if res.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", res.Detail)
	}
	return b.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
