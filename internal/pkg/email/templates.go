// internal/pkg/email/templates.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var templateFuncs = template.FuncMap{
	// cents to a dollar string, e.g. 1999 -> "$19.99"
	"money": func(cents int64) string {
		return fmt.Sprintf("$%.2f", float64(cents)/100)
	},
}

const orderConfirmationTmpl = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Order Confirmation</h2>
  <p>Thank you for your order!</p>
  <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
  <p><strong>Date:</strong> {{.OrderDate}}</p>

  <table style="width: 100%; border-collapse: collapse; margin-top: 20px;">
    <thead>
      <tr style="background-color: #f8f9fa;">
        <th style="padding: 8px; text-align: left; border-bottom: 2px solid #ddd;">Product</th>
        <th style="padding: 8px; text-align: left; border-bottom: 2px solid #ddd;">Qty</th>
        <th style="padding: 8px; text-align: left; border-bottom: 2px solid #ddd;">Price</th>
        <th style="padding: 8px; text-align: left; border-bottom: 2px solid #ddd;">Total</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Name}} ({{.Size}})</td>
        <td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Quantity}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #ddd;">{{money .Price}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #ddd;">{{money .LineTotal}}</td>
      </tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr>
        <td colspan="3" style="padding: 8px; text-align: right; font-weight: bold;">Total:</td>
        <td style="padding: 8px; font-weight: bold;">{{money .TotalPrice}}</td>
      </tr>
    </tfoot>
  </table>

  <p style="margin-top: 20px;">We will process your order shortly.</p>
</div>
`

const welcomeTmpl = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to {{.SiteName}}!</h2>
  <p>Hi {{.UserName}},</p>
  <p>Your account is ready. Happy shopping!</p>
  <p><a href="{{.SiteURL}}">Browse the catalog</a></p>
</div>
`

func loadTemplates() (map[string]*template.Template, error) {
	sources := map[string]string{
		"order_confirmation": orderConfirmationTmpl,
		"welcome":            welcomeTmpl,
	}

	templates := make(map[string]*template.Template, len(sources))
	for name, src := range sources {
		tmpl, err := template.New(name).Funcs(templateFuncs).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return templates, nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	return buf.String(), nil
}
