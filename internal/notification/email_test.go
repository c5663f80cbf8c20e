package notification

import (
	"context"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"

	"netpulse/internal/domain"
)

type fakeDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, m...)
	return nil
}

func TestEmailSender_Send(t *testing.T) {
	dialer := &fakeDialer{}
	sender := &EmailSender{
		config: SMTPConfig{Host: "smtp.example.net", Port: 587, From: "alerts@example.net"},
		dialer: dialer,
	}
	ch := &domain.NotificationChannel{
		ID: "ch-1", Type: domain.ChannelEmail,
		Settings: domain.ChannelSettings{Recipients: []string{"ops@example.net"}},
	}

	if err := sender.Send(context.Background(), ch, httpNotification()); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(dialer.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(dialer.messages))
	}
	msg := dialer.messages[0]
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "[CRITICAL] High CPU: radius" {
		t.Errorf("Subject = %v", got)
	}
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "ops@example.net" {
		t.Errorf("To = %v", got)
	}
}

func TestEmailSender_CancelledContext(t *testing.T) {
	dialer := &fakeDialer{}
	sender := &EmailSender{
		config: SMTPConfig{Host: "smtp.example.net", Port: 587, From: "alerts@example.net"},
		dialer: dialer,
	}
	ch := &domain.NotificationChannel{
		Settings: domain.ChannelSettings{Recipients: []string{"ops@example.net"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sender.Send(ctx, ch, httpNotification()); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if len(dialer.messages) != 0 {
		t.Error("no mail should be sent after cancellation")
	}
}

func TestSMTPConfig_Validate(t *testing.T) {
	valid := SMTPConfig{Host: "smtp.example.net", Port: 587, From: "alerts@example.net"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate on valid config = %v", err)
	}
	for name, cfg := range map[string]SMTPConfig{
		"missing host": {Port: 587, From: "a@b"},
		"missing port": {Host: "h", From: "a@b"},
		"missing from": {Host: "h", Port: 587},
	} {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestHTMLBodyEscapes(t *testing.T) {
	n := httpNotification()
	n.Alert.Message = `<script>alert("x")</script>`
	body := htmlBody(n)
	if strings.Contains(body, "<script>") {
		t.Error("message content must be HTML-escaped")
	}
}
