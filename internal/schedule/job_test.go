package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/logcheck/internal/config"
)

func TestNewJob_InheritsDefaults(t *testing.T) {
	d := Defaults{Timeout: 5 * time.Minute, MaxRetries: 3, RetryDelay: time.Minute}
	spec := config.JobSpec{
		Name:     "nightly-dump",
		Schedule: "30 6 * * *",
		Script:   "/opt/backup/dump.sh",
	}

	j := NewJob(spec, &fakeRunner{name: "nightly-dump"}, d)

	assert.Equal(t, "nightly-dump", j.Name)
	assert.Equal(t, "30 6 * * *", j.Schedule)
	assert.Equal(t, 5*time.Minute, j.Timeout)
	assert.Equal(t, 3, j.MaxRetries)
	assert.Equal(t, time.Minute, j.RetryDelay)
	assert.False(t, j.NotifyOnSuccess)
}

func TestNewJob_SpecOverrides(t *testing.T) {
	d := Defaults{Timeout: 5 * time.Minute, MaxRetries: 3, RetryDelay: time.Minute}
	spec := config.JobSpec{
		Name:              "backup-check",
		Schedule:          "*/5 * * * *",
		Script:            "/opt/backup/check.sh",
		Description:       "verify the nightly backup landed",
		NotifyOnSuccess:   true,
		TimeoutSeconds:    30,
		MaxRetries:        5,
		RetryDelaySeconds: 10,
	}

	j := NewJob(spec, &fakeRunner{name: "backup-check"}, d)

	assert.Equal(t, 30*time.Second, j.Timeout)
	assert.Equal(t, 5, j.MaxRetries)
	assert.Equal(t, 10*time.Second, j.RetryDelay)
	assert.True(t, j.NotifyOnSuccess)
	assert.Equal(t, "verify the nightly backup landed", j.Description)
}
