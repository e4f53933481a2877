// utils/email.go
package utils

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"jewelstore/models"
)

// EmailService handles sending emails using SendGrid
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService initializes a new EmailService, or returns nil when no API
// key is configured so callers can skip mail entirely.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return nil
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	from := mail.NewEmail("Jewel Store", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation email to the customer
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your order (ID: %s)! We will reach out on %s to arrange delivery.<br><br>Total: <strong>%d</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.CustomerName,
		order.ID.Hex(),
		order.PrimaryPhone,
		order.TotalPrice,
		order.PaymentMethod,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendStatusEmail notifies the customer that their order reached a final
// status (completed or cancelled).
func (es *EmailService) SendStatusEmail(toEmail string, order models.Order) error {
	subject := "Order Update"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order (ID: %s) is now <strong>%s</strong>.<br><br>Thank you for shopping with us!",
		order.CustomerName,
		order.ID.Hex(),
		order.Status,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
