package service

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"golang.org/x/text/message"
)

// ConfirmationNotifier delivers sign-up confirmation codes.
type ConfirmationNotifier interface {
	SendConfirmationCode(ctx context.Context, user *models.User, code string) error
}

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	printer      *message.Printer
	send         func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService renders mail in the bundle's default language.
func NewEmailService(cfg *config.Config, bundle *i18n.Bundle) *EmailService {
	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		printer:      bundle.Default(),
		send:         smtp.SendMail,
	}
}

func (s *EmailService) SendConfirmationCode(ctx context.Context, user *models.User, code string) error {
	subject := i18n.M(i18n.ConfirmationSubject).Localize(s.printer)
	body := i18n.M(i18n.ConfirmationBody, user.Username, code).Localize(s.printer)
	return s.SendEmail(ctx, user.Email, subject, body)
}

func (s *EmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	// If SMTP is not configured, log the email instead
	if s.smtpHost == "" {
		logging.Ctx(ctx).Info().
			Str("to", to).
			Str("subject", subject).
			Str("body", body).
			Msg("smtp not configured, logging email")
		return nil
	}

	var auth smtp.Auth
	if s.smtpUsername != "" {
		auth = smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, s.fromEmail, mime.QEncoding.Encode("utf-8", subject), body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
