package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/edvin/logcheck/internal/config"
)

// Sender delivers an assembled mail message. The production
// implementation speaks SMTP through go-mail; tests substitute a
// recording fake.
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPSender wraps a go-mail client configured for either STARTTLS or
// implicit SSL, never both.
type SMTPSender struct {
	client *mail.Client
}

// NewSMTPSender builds the SMTP client from config. Credentials are
// used for PLAIN auth when a username is set and are never logged.
func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
	}

	switch {
	case cfg.SMTPUseSSL:
		opts = append(opts, mail.WithSSL())
	case cfg.SMTPUseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPServer, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPSender{client: client}, nil
}

// Send dials the server, delivers the message, and closes the
// connection. Handshake, auth, and send failures all surface as one
// error for the notifier's retry policy.
func (s *SMTPSender) Send(ctx context.Context, msg *mail.Msg) error {
	return s.client.DialAndSendWithContext(ctx, msg)
}
