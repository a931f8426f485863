package notify

import (
	"strings"
	"time"
)

const subjectTimeLayout = "2006-01-02 15:04:05"

// SubjectTemplates holds one subject template per severity. Templates
// carry `{hostname}`, `{script_name}` and `{timestamp}` placeholders.
type SubjectTemplates struct {
	Error   string
	Warning string
	Success string
}

// ForSeverity returns the template for the given severity, falling back
// to the error template for unknown values so a notification is never
// silently dropped over a label.
func (t SubjectTemplates) ForSeverity(sev Severity) string {
	switch sev {
	case SeverityWarning:
		return t.Warning
	case SeveritySuccess:
		return t.Success
	default:
		return t.Error
	}
}

// ExpandSubject substitutes the recognized placeholders. Unrecognized
// placeholders stay verbatim, so a typo in a configured template shows
// up in the mail subject instead of crashing the notifier.
func ExpandSubject(template, hostname, scriptName string, now time.Time) string {
	r := strings.NewReplacer(
		"{hostname}", hostname,
		"{script_name}", scriptName,
		"{timestamp}", now.Format(subjectTimeLayout),
	)
	return r.Replace(template)
}
