// Package notify forwards confirmed reports to the municipal authority
// by email.
package notify

import (
	"fmt"
	"strings"

	"billboard-service/models"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier sends report submissions to the configured municipality
// address via SendGrid.
type Notifier struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	toEmail   string
}

// NewNotifier creates a notifier. Returns nil when no API key or
// recipient is configured; callers treat a nil notifier as disabled.
func NewNotifier(apiKey, fromName, fromEmail, toEmail string) *Notifier {
	if apiKey == "" || toEmail == "" {
		log.Warn("Municipality notifier disabled: missing SendGrid key or recipient")
		return nil
	}
	return &Notifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

// SendReport emails one report to the municipal authority.
func (n *Notifier) SendReport(report *models.Report) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(n.toEmail, n.toEmail)
	subject := fmt.Sprintf("Billboard compliance report #%d", report.ID)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", n.reportText(report)))

	resp, err := n.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	log.Infof("Forwarded report %d to municipality %s", report.ID, n.toEmail)
	return nil
}

func (n *Notifier) reportText(report *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A citizen has reported a billboard compliance issue.\n\n")
	fmt.Fprintf(&b, "Report ID: %d\n", report.ID)
	fmt.Fprintf(&b, "Submitted: %s\n", report.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Location: %s\n", report.LocationDetails)
	fmt.Fprintf(&b, "Compliant: %t\n", report.IsCompliant)
	fmt.Fprintf(&b, "Summary: %s\n", report.Summary)
	fmt.Fprintf(&b, "Image: %s\n\n", report.ImageURL)
	if len(report.Violations) > 0 {
		fmt.Fprintf(&b, "Violations:\n")
		for _, v := range report.Violations {
			fmt.Fprintf(&b, "- %s (%s) - %s\n", v.ViolationType, v.Severity, v.Details)
		}
	}
	return b.String()
}
