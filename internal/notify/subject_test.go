package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpandSubject_AllPlaceholders(t *testing.T) {
	now := time.Date(2026, 8, 25, 6, 30, 15, 0, time.UTC)

	got := ExpandSubject("[FEHLER] {hostname} - {script_name} - {timestamp}", "backup01", "backup-check", now)
	assert.Equal(t, "[FEHLER] backup01 - backup-check - 2026-08-25 06:30:15", got)
}

func TestExpandSubject_UnknownPlaceholderStaysVerbatim(t *testing.T) {
	now := time.Date(2026, 8, 25, 6, 30, 15, 0, time.UTC)

	got := ExpandSubject("{hostname} {hostnme} {severity}", "backup01", "job", now)
	assert.Equal(t, "backup01 {hostnme} {severity}", got)
}

func TestExpandSubject_NoPlaceholders(t *testing.T) {
	got := ExpandSubject("plain subject", "h", "s", time.Now())
	assert.Equal(t, "plain subject", got)
}

func TestExpandSubject_RepeatedPlaceholder(t *testing.T) {
	got := ExpandSubject("{script_name}/{script_name}", "h", "job", time.Now())
	assert.Equal(t, "job/job", got)
}

func TestSubjectTemplates_ForSeverity(t *testing.T) {
	tmpl := SubjectTemplates{Error: "E", Warning: "W", Success: "S"}

	assert.Equal(t, "E", tmpl.ForSeverity(SeverityError))
	assert.Equal(t, "W", tmpl.ForSeverity(SeverityWarning))
	assert.Equal(t, "S", tmpl.ForSeverity(SeveritySuccess))
	assert.Equal(t, "E", tmpl.ForSeverity(Severity("bogus")), "unknown severities fall back to the error template")
}
