package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	gomail "github.com/wneessen/go-mail"

	"parcel-delivery/internal/logx"
)

const smtpTimeout = 15 * time.Second

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPSender sends rendered messages over SMTP.
type SMTPSender struct {
	renderer *Renderer
	from     *mail.Address

	mu     sync.Mutex
	client *gomail.Client
}

// NewSMTPSender validates cfg and prepares a client. No connection is made until Send.
func NewSMTPSender(cfg SMTPConfig, r *Renderer) (*SMTPSender, error) {
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse sender address %q: %w", cfg.From, err)
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(smtpTimeout),
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Pass),
		)
	}

	client, err := gomail.NewClient(strings.TrimSpace(cfg.Host), opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{renderer: r, from: from, client: client}, nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	body, err := s.renderer.Render(msg.Template, msg.Context)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(s.from.Name, s.from.Address); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := m.AddToFormat(msg.To.Name, msg.To.Email); err != nil {
		return nil, fmt.Errorf("set to %s: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, body)
	return m, nil
}

// Send renders msg and delivers it. Sends are serialized over one client.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender renders messages and logs them instead of sending. It is used when
// no SMTP host is configured.
type LogSender struct {
	renderer *Renderer
	logger   logx.Logger
}

func NewLogSender(r *Renderer, logger logx.Logger) *LogSender {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogSender{renderer: r, logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	body, err := s.renderer.Render(msg.Template, msg.Context)
	if err != nil {
		return err
	}
	s.logger.Info("mail logged",
		logx.String("to", msg.To.String()),
		logx.String("subject", msg.Subject),
		logx.String("template", msg.Template),
		logx.Int("body_bytes", len(body)),
	)
	return nil
}
