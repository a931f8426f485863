package notify

// Severity selects the subject template and the metrics label for one
// notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// Message is one notification to deliver. Body is plain text, already
// rendered by the caller; the notifier only adds the subject line and
// transport framing.
type Message struct {
	Severity   Severity
	ScriptName string // fills the {script_name} subject placeholder
	Body       string
	Attachment string // optional report file path, attached when set

	// Recipients overrides the configured default recipients when
	// nonempty.
	Recipients []string
}
