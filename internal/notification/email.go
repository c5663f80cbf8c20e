package notification

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"netpulse/internal/domain"
)

// SMTPConfig holds the mail relay settings for the email sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Validate validates the SMTP configuration.
func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.From == "" {
		return fmt.Errorf("smtp from address is required")
	}
	return nil
}

// mailDialer is the slice of gomail we use, so tests can substitute it.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers notifications over SMTP.
type EmailSender struct {
	config SMTPConfig
	dialer mailDialer
}

// NewEmailSender creates an email sender for the given relay.
func NewEmailSender(config SMTPConfig) (*EmailSender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid smtp config: %w", err)
	}
	return &EmailSender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

// Type returns the channel type this sender handles.
func (s *EmailSender) Type() domain.ChannelType {
	return domain.ChannelEmail
}

// Send mails the alert to every recipient configured on the channel.
func (s *EmailSender) Send(ctx context.Context, channel *domain.NotificationChannel, n *Notification) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.config.From)
	msg.SetHeader("To", channel.Settings.Recipients...)
	msg.SetHeader("Subject", Subject(n))
	msg.SetBody("text/html", htmlBody(n))

	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// htmlBody renders the alert as a small HTML table.
func htmlBody(n *Notification) string {
	var b strings.Builder
	b.WriteString("<h2>" + html.EscapeString(Subject(n)) + "</h2>")
	b.WriteString("<table>")
	row := func(k, v string) {
		fmt.Fprintf(&b, "<tr><td><b>%s</b></td><td>%s</td></tr>",
			html.EscapeString(k), html.EscapeString(v))
	}
	row("Service", n.Alert.ServiceName)
	row("Severity", string(n.Alert.Severity))
	row("Triggered", n.Alert.TriggeredAt.String())
	if n.Alert.TriggeredValue != nil {
		row("Value", fmt.Sprintf("%g", *n.Alert.TriggeredValue))
	}
	if n.Alert.MatchedPattern != "" {
		row("Pattern", n.Alert.MatchedPattern)
	}
	b.WriteString("</table>")
	b.WriteString("<p>" + html.EscapeString(n.Alert.Message) + "</p>")
	return b.String()
}
