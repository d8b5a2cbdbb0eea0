// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
)

// EmailService handles all email operations
type EmailService struct {
	config    *config.Config
	logger    *logrus.Logger
	templates map[string]*template.Template
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger *logrus.Logger) (*EmailService, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &EmailService{
		config:    cfg,
		logger:    logger,
		templates: templates,
	}, nil
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Email.Provider {
	case "smtp":
		if err := s.sendSMTPEmail(email); err != nil {
			return apperror.DependencyFailure(err, "email delivery failed")
		}
		return nil
	case "log":
		// Development provider: record the send instead of delivering.
		s.logger.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("Email delivery skipped (log provider)")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

// SendOrderConfirmation sends the order confirmation email.
func (s *EmailService) SendOrderConfirmation(ctx context.Context, to string, data OrderConfirmationData) error {
	data.SiteName = s.config.Email.FromName
	if data.OrderDate == "" {
		data.OrderDate = time.Now().UTC().Format("January 2, 2006")
	}

	htmlContent, err := s.renderTemplate("order_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	email := &Email{
		To:          []string{to},
		Subject:     fmt.Sprintf("Order Confirmation %s", data.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	}

	return s.SendEmail(ctx, email)
}

// SendWelcome sends a welcome email to a newly registered user.
func (s *EmailService) SendWelcome(ctx context.Context, to, userName string) error {
	data := WelcomeData{
		SiteName: s.config.Email.FromName,
		UserName: userName,
		SiteURL:  s.config.Email.BaseURL,
	}

	htmlContent, err := s.renderTemplate("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}

	email := &Email{
		To:          []string{to},
		Subject:     fmt.Sprintf("Welcome to %s!", s.config.Email.FromName),
		HTMLContent: htmlContent,
		Type:        EmailTypeWelcome,
	}

	return s.SendEmail(ctx, email)
}
