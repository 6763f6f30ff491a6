package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/healthbook/booking-api/pkg/logger"
)

// Service sends transactional mail.
type Service interface {
	SendPasswordReset(ctx context.Context, to string, token string) error
}

// SMTPConfig configures the gomail sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	base   string
}

// NewSMTPService creates a Service sending through SMTP.
func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		base:   cfg.BaseURL,
	}
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to string, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your HealthBook password")
	m.SetBody("text/html", fmt.Sprintf(
		`<p>A password reset was requested for your account.</p>
<p><a href="%s/reset-password?token=%s">Reset password</a></p>
<p>The link expires in one hour. If you did not request this, ignore this email.</p>`,
		s.base, token,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

type noopService struct {
	logger *logger.Logger
}

// NewNoopService returns a Service that only logs. Used when SMTP is not
// configured (local development, tests).
func NewNoopService(log *logger.Logger) Service {
	return &noopService{logger: log}
}

func (s *noopService) SendPasswordReset(ctx context.Context, to string, token string) error {
	s.logger.WithFields(map[string]interface{}{"to": to}).Info("password reset email suppressed (no SMTP configured)")
	return nil
}
