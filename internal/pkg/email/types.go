// internal/pkg/email/types.go
package email

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeWelcome           EmailType = "welcome"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// OrderConfirmationData contains data for the order confirmation email.
// Prices are snapshots in cents, frozen at checkout time.
type OrderConfirmationData struct {
	SiteName    string
	OrderNumber string
	OrderDate   string
	Items       []OrderLine
	TotalPrice  int64
}

// OrderLine represents a single line in the confirmation table.
type OrderLine struct {
	Name      string
	Size      string
	Quantity  int
	Price     int64
	LineTotal int64
}

// WelcomeData contains data for the welcome email.
type WelcomeData struct {
	SiteName string
	UserName string
	SiteURL  string
}
