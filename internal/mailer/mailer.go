package mailer

import (
	"fmt"
	"html"

	"trendline/internal/config"
	"trendline/internal/domain"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail. Callers treat delivery as best-effort:
// send failures are logged, never propagated into the request that triggered
// them.
type Mailer interface {
	SendOrderConfirmation(to string, order *domain.Order) error
	SendOrderStatusUpdate(to string, order *domain.Order) error
	SendPasswordReset(to, resetToken string) error
	SendContactMessage(fromName, fromEmail, message string) error
}

type smtpMailer struct {
	dialer       *gomail.Dialer
	from         string
	contactInbox string
}

// New creates an SMTP-backed Mailer from configuration.
func New(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{
		dialer:       gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:         cfg.From,
		contactInbox: cfg.ContactInbox,
	}
}

func (m *smtpMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func orderLinesHTML(order *domain.Order) string {
	body := "<ul>"
	for _, item := range order.Items {
		body += fmt.Sprintf("<li>%s (%s, %s) &times; %d: %.2f</li>",
			html.EscapeString(item.ProductName),
			html.EscapeString(item.ColorName),
			html.EscapeString(item.Size),
			item.Quantity,
			item.UnitPrice*float64(item.Quantity),
		)
	}
	body += "</ul>"
	return body
}

func (m *smtpMailer) SendOrderConfirmation(to string, order *domain.Order) error {
	subject := fmt.Sprintf("Order confirmation %s", order.ID)
	body := fmt.Sprintf(
		"<h2>Thanks for your order</h2><p>Order <b>%s</b> was received and is now pending.</p>%s<p>Total: <b>%.2f</b></p>",
		order.ID, orderLinesHTML(order), order.Total,
	)
	return m.send(to, subject, body)
}

func (m *smtpMailer) SendOrderStatusUpdate(to string, order *domain.Order) error {
	subject := fmt.Sprintf("Order %s is now %s", order.ID, order.Status)
	body := fmt.Sprintf(
		"<h2>Order update</h2><p>Your order <b>%s</b> changed status to <b>%s</b>.</p>",
		order.ID, order.Status,
	)
	return m.send(to, subject, body)
}

func (m *smtpMailer) SendPasswordReset(to, resetToken string) error {
	body := fmt.Sprintf(
		"<h2>Password reset</h2><p>Use this token to reset your password. It expires in 15 minutes and works once.</p><p><code>%s</code></p><p>If you did not request this, ignore this message.</p>",
		html.EscapeString(resetToken),
	)
	return m.send(to, "Password reset", body)
}

func (m *smtpMailer) SendContactMessage(fromName, fromEmail, message string) error {
	body := fmt.Sprintf(
		"<h2>Contact form</h2><p>From: %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(fromName),
		html.EscapeString(fromEmail),
		html.EscapeString(message),
	)
	return m.send(m.contactInbox, "New contact form message", body)
}
