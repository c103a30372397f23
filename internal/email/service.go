package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/workstream/comms-api/internal/config"
)

// Service sends transactional mail. Only urgent announcements go out
// by email; everything else stays in the in-app feed.
type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

type service struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

func NewService(cfg config.EmailConfig) Service {
	return &service{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *service) Send(_ context.Context, to, subject, body string) error {
	if !s.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// NopService discards all mail; used when email is disabled and in tests.
type NopService struct{}

func (NopService) Send(context.Context, string, string, string) error { return nil }
