package notify

import (
	"context"
	"fmt"

	"soulsync-backend/internal/config"
	"soulsync-backend/internal/models"

	"github.com/wneessen/go-mail"
)

// EmailProvider delivers an email notification to a recipient
type EmailProvider interface {
	Send(ctx context.Context, toAddr, toName string, kind EventKind, date models.Date) error
}

// SMTPProvider sends emails over SMTP
type SMTPProvider struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTPProvider creates an email provider from config
func NewSMTPProvider(cfg config.EmailConfig) (*SMTPProvider, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	fromName := cfg.FromName
	if fromName == "" {
		fromName = "SoulSync"
	}
	return &SMTPProvider{client: client, from: cfg.From, fromName: fromName}, nil
}

// Send delivers one email with plaintext and HTML alternatives
func (p *SMTPProvider) Send(ctx context.Context, toAddr, toName string, kind EventKind, date models.Date) error {
	subject, text, html := emailContent(kind, date, toName)

	msg := mail.NewMsg()
	if err := msg.FromFormat(p.fromName, p.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.AddToFormat(toName, toAddr); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	if err := p.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
