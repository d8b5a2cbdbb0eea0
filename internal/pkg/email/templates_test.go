package email

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anand95733/clothify-backend/internal/config"
)

func newTestEmailService(t *testing.T) *EmailService {
	cfg := &config.Config{}
	cfg.App.Name = "Clothify"
	cfg.Email.Provider = "log"
	cfg.Email.FromEmail = "noreply@clothify.local"

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := NewEmailService(cfg, logger)
	require.NoError(t, err)
	return svc
}

func TestRenderOrderConfirmation(t *testing.T) {
	svc := newTestEmailService(t)

	html, err := svc.renderTemplate(string(EmailTypeOrderConfirmation), OrderConfirmationData{
		SiteName:    "Clothify",
		OrderNumber: "ORD-20260831-00042",
		OrderDate:   "August 31, 2026",
		TotalPrice:  9497,
		Items: []OrderLine{
			{Name: "Classic Tee", Size: "M", Quantity: 2, Price: 1999, LineTotal: 3998},
			{Name: "Slim Jeans", Size: "S", Quantity: 1, Price: 5499, LineTotal: 5499},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "ORD-20260831-00042")
	assert.Contains(t, html, "Classic Tee")
	assert.Contains(t, html, "$39.98", "line totals are rendered in dollars")
	assert.Contains(t, html, "$94.97")
}

func TestRenderWelcome(t *testing.T) {
	svc := newTestEmailService(t)

	html, err := svc.renderTemplate(string(EmailTypeWelcome), WelcomeData{
		SiteName: "Clothify",
		UserName: "Ada Lovelace",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Ada Lovelace")
}
