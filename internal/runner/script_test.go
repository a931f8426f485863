package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestScript_ExitZeroSucceeds(t *testing.T) {
	r := NewScript(zerolog.Nop(), "hello", "echo hello world")

	res := r.Run(context.Background())

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Contains(t, res.Detail, "hello world")
	assert.Empty(t, res.Attachment)
}

func TestScript_ExitOneIsWarning(t *testing.T) {
	r := NewScript(zerolog.Nop(), "warn", "echo disk almost full; exit 1")

	res := r.Run(context.Background())

	assert.Equal(t, StatusWarning, res.Status)
	assert.Contains(t, res.Detail, "disk almost full")
}

func TestScript_HigherExitCodesFail(t *testing.T) {
	r := NewScript(zerolog.Nop(), "fail", "echo copy interrupted >&2; exit 2")

	res := r.Run(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Detail, "copy interrupted", "stderr ends up in the detail")
}

func TestScript_MissingCommandFails(t *testing.T) {
	// The shell exits 127 when the command does not exist.
	r := NewScript(zerolog.Nop(), "gone", "/does/not/exist/backup.sh")

	res := r.Run(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	assert.NotEmpty(t, res.Detail)
}

func TestScript_DeadlineTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := NewScript(zerolog.Nop(), "slow", "sleep 10")

	res := r.Run(ctx)

	assert.Equal(t, StatusTimedOut, res.Status)
}

func TestScript_TimeoutWithBackgroundChild(t *testing.T) {
	// The backgrounded sleep inherits the shell's stdout pipe. Killing
	// only the shell at the deadline would leave Run blocked on the pipe
	// until the sleep exits.
	r := NewScript(zerolog.Nop(), "bg", "sleep 3 & echo started")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := r.Run(ctx)
	elapsed := time.Since(start)

	assert.Equal(t, StatusTimedOut, res.Status)
	assert.Equal(t, "started", res.Detail)
	assert.Less(t, elapsed, 2*time.Second, "run returns near the deadline, not when the orphan exits")
}

func TestScript_ExitZeroWithLingeringChildSucceeds(t *testing.T) {
	// The shell exits zero right away; the backgrounded sleep keeps the
	// output pipe open past the wait grace. The run still counts as a
	// success and returns once the grace expires.
	r := NewScript(zerolog.Nop(), "linger", "sleep 2 & echo started")
	r.waitGrace = 100 * time.Millisecond

	start := time.Now()
	res := r.Run(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Equal(t, "started", res.Detail)
	assert.Less(t, elapsed, time.Second, "the wait grace bounds the pipe wait")
}

func TestTailString(t *testing.T) {
	assert.Equal(t, "short", tailString("  short \n", 100))

	long := strings.Repeat("x", 100) + "the end"
	got := tailString(long, 10)
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "the end"), "the tail survives, the head is dropped")
	assert.Len(t, got, 13)
}
