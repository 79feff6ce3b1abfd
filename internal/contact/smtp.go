package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the outbound mail account and the fixed operator
// address that receives every contact message.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

// SMTPRelay emails contact messages to the operator.
type SMTPRelay struct {
	cfg SMTPConfig
}

// NewSMTPRelay returns ErrRelayNotConfigured when the host or either address
// is missing.
func NewSMTPRelay(cfg SMTPConfig) (*SMTPRelay, error) {
	if cfg.Host == "" || cfg.From == "" || cfg.To == "" {
		return nil, ErrRelayNotConfigured
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPRelay{cfg: cfg}, nil
}

func (r *SMTPRelay) Name() string { return "smtp" }

func (r *SMTPRelay) message(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(r.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(r.cfg.To); err != nil {
		return nil, fmt.Errorf("operator address: %w", err)
	}
	if m.Email != "" {
		// a malformed sender address only loses the Reply-To header
		_ = msg.ReplyTo(m.Email)
	}
	msg.Subject(m.Subject())
	msg.SetBodyString(mail.TypeTextPlain, m.Body())
	return msg, nil
}

func (r *SMTPRelay) Send(ctx context.Context, m Message) error {
	msg, err := r.message(m)
	if err != nil {
		return err
	}
	opts := []mail.Option{
		mail.WithPort(r.cfg.Port),
		mail.WithTimeout(r.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if r.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(r.cfg.Username),
			mail.WithPassword(r.cfg.Password),
		)
	}
	client, err := mail.NewClient(r.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
