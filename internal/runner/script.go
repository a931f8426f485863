package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// maxDetailBytes caps how much script output is carried into execution
// records and notification bodies. Scripts that log megabytes keep the
// tail, which is where the failure usually is.
const maxDetailBytes = 4 * 1024

// defaultWaitGrace bounds how long Run waits for the command's output
// pipes to close after the shell itself is gone. A script that leaves a
// background child attached to stdout must not hold its concurrency
// slot until that child exits.
const defaultWaitGrace = 5 * time.Second

// Script executes an external command through the shell and maps its
// exit code onto a Result. The convention follows monitoring plugins:
// exit 0 is success, exit 1 is a warning, anything above is a failure.
type Script struct {
	logger    zerolog.Logger
	name      string
	command   string
	waitGrace time.Duration
}

func NewScript(logger zerolog.Logger, name, command string) *Script {
	return &Script{
		logger:    logger.With().Str("component", "script-runner").Logger(),
		name:      name,
		command:   command,
		waitGrace: defaultWaitGrace,
	}
}

func (s *Script) Name() string { return s.name }

func (s *Script) Run(ctx context.Context) Result {
	s.logger.Debug().Str("job", s.name).Str("command", s.command).Msg("running script")

	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	// The shell runs in its own process group so cancellation kills its
	// backgrounded children too. WaitDelay bounds how long a pipe still
	// held by an escaped child can delay Run after the shell is gone.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = s.waitGrace

	out, err := cmd.CombinedOutput()
	detail := tailString(string(out), maxDetailBytes)

	if ctx.Err() != nil {
		return Result{Status: StatusTimedOut, Detail: detail}
	}
	if err == nil {
		return Result{Status: StatusSucceeded, Detail: detail}
	}

	// ErrWaitDelay means the script exited zero but something it spawned
	// still held the output pipe when the grace ran out. The run itself
	// succeeded; only trailing output is lost.
	if errors.Is(err, exec.ErrWaitDelay) {
		s.logger.Warn().Str("job", s.name).Msg("script exited but a child still holds its output pipe")
		return Result{Status: StatusSucceeded, Detail: detail}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == 1 {
			return Result{Status: StatusWarning, Detail: detail}
		}
		return Result{Status: StatusFailed, Detail: detail}
	}

	// The command never started, so there is no output to report.
	if detail == "" {
		detail = err.Error()
	}
	return Result{Status: StatusFailed, Detail: detail}
}

// tailString keeps at most max bytes from the end of s.
func tailString(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
