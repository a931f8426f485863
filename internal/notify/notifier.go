package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/edvin/logcheck/internal/config"
)

// ErrTransport marks a notification that could not be delivered after
// transport-level retries were exhausted. Callers treat it as a failed
// outcome, never as a reason to crash.
var ErrTransport = errors.New("notification transport failed")

var notificationsSent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "logcheck_notifications_sent_total",
		Help: "Notification delivery attempts by severity and outcome",
	},
	[]string{"severity", "outcome"},
)

// Notifier formats messages into mail and delivers them via the
// configured sender, retrying transient transport failures with
// exponential backoff.
type Notifier struct {
	logger zerolog.Logger
	cfg    *config.Config
	sender Sender

	templates SubjectTemplates
	now       func() time.Time
	backoffFn func(ctx context.Context) backoff.BackOff
}

func New(logger zerolog.Logger, cfg *config.Config, sender Sender) *Notifier {
	return &Notifier{
		logger: logger.With().Str("component", "notifier").Logger(),
		cfg:    cfg,
		sender: sender,
		templates: SubjectTemplates{
			Error:   cfg.SubjectError,
			Warning: cfg.SubjectWarning,
			Success: cfg.SubjectSuccess,
		},
		now:       time.Now,
		backoffFn: transportBackoff,
	}
}

// transportBackoff bounds the retry budget for one notification. The
// budget stays well under a typical retry_delay so a failed delivery
// resolves before the owning job's next attempt.
func transportBackoff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxElapsedTime = 45 * time.Second
	return backoff.WithContext(bo, ctx)
}

// Notify delivers one message. A delivery failure is returned as a
// structured ErrTransport outcome for the caller to record; the
// notifier itself never panics or aborts the process.
func (n *Notifier) Notify(ctx context.Context, m Message) error {
	recipients := m.Recipients
	if len(recipients) == 0 {
		recipients = n.cfg.Recipients
	}
	if len(recipients) == 0 {
		notificationsSent.WithLabelValues(string(m.Severity), "failure").Inc()
		return fmt.Errorf("%w: no recipients configured", ErrTransport)
	}

	msg, err := n.build(m, recipients)
	if err != nil {
		notificationsSent.WithLabelValues(string(m.Severity), "failure").Inc()
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	send := func() error {
		return n.sender.Send(ctx, msg)
	}
	notifyRetry := func(err error, wait time.Duration) {
		n.logger.Warn().
			Err(err).
			Dur("retry_in", wait).
			Str("script", m.ScriptName).
			Msg("mail delivery failed, retrying")
	}

	if err := backoff.RetryNotify(send, n.backoffFn(ctx), notifyRetry); err != nil {
		notificationsSent.WithLabelValues(string(m.Severity), "failure").Inc()
		n.logger.Error().
			Err(err).
			Str("severity", string(m.Severity)).
			Str("script", m.ScriptName).
			Msg("mail delivery failed permanently")
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	notificationsSent.WithLabelValues(string(m.Severity), "success").Inc()
	n.logger.Info().
		Str("severity", string(m.Severity)).
		Str("script", m.ScriptName).
		Int("recipients", len(recipients)).
		Msg("notification sent")
	return nil
}

func (n *Notifier) build(m Message, recipients []string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.FromFormat(n.cfg.FromName, n.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	template := n.templates.ForSeverity(m.Severity)
	msg.Subject(ExpandSubject(template, n.cfg.Hostname, m.ScriptName, n.now()))
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	if m.Attachment != "" {
		if _, err := os.Stat(m.Attachment); err != nil {
			// A vanished report file downgrades the mail, it does not
			// block it.
			n.logger.Warn().Err(err).Str("path", m.Attachment).Msg("attachment unreadable, sending without it")
		} else {
			msg.AttachFile(m.Attachment)
		}
	}

	return msg, nil
}
