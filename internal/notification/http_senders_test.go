package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"netpulse/internal/domain"
)

func httpNotification() *Notification {
	v := 95.0
	return &Notification{
		Alert: &domain.Alert{
			ID:             "alert-1",
			ConfigID:       "cfg-1",
			Status:         domain.AlertStatusActive,
			Severity:       domain.SeverityCritical,
			ServiceName:    "radius",
			Message:        "cpu_usage 95 gt 90",
			TriggeredAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			TriggeredValue: &v,
		},
		Config: &domain.AlertConfiguration{ID: "cfg-1", Name: "High CPU"},
	}
}

func TestWebhookSender_Send(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.Client())
	ch := &domain.NotificationChannel{
		ID: "ch-1", Name: "hook", Type: domain.ChannelWebhook, Enabled: true,
		Settings: domain.ChannelSettings{URL: srv.URL},
	}

	if err := sender.Send(context.Background(), ch, httpNotification()); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if got.AlertID != "alert-1" || got.ServiceName != "radius" || got.Severity != "critical" {
		t.Errorf("payload = %+v", got)
	}
	if got.TriggeredValue == nil || *got.TriggeredValue != 95 {
		t.Errorf("triggered_value = %v, want 95", got.TriggeredValue)
	}
}

func TestWebhookSender_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.Client())
	ch := &domain.NotificationChannel{
		ID: "ch-1", Type: domain.ChannelWebhook,
		Settings: domain.ChannelSettings{URL: srv.URL},
	}

	err := sender.Send(context.Background(), ch, httpNotification())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestCustomSender_Headers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "s3cret" {
			t.Errorf("X-Api-Key = %q, want s3cret", r.Header.Get("X-Api-Key"))
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewCustomSender(srv.Client())
	ch := &domain.NotificationChannel{
		ID: "ch-1", Type: domain.ChannelCustom,
		Settings: domain.ChannelSettings{
			URL:     srv.URL,
			Headers: map[string]string{"X-Api-Key": "s3cret"},
		},
	}

	if err := sender.Send(context.Background(), ch, httpNotification()); err != nil {
		t.Fatalf("Send error: %v", err)
	}
}

func TestSMSSender_Send(t *testing.T) {
	var got smsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender, err := NewSMSSender(SMSGatewayConfig{URL: srv.URL, Token: "tok"}, srv.Client())
	if err != nil {
		t.Fatalf("NewSMSSender error: %v", err)
	}
	ch := &domain.NotificationChannel{
		ID: "ch-1", Type: domain.ChannelSMS,
		Settings: domain.ChannelSettings{PhoneNumbers: []string{"+15550100"}},
	}

	if err := sender.Send(context.Background(), ch, httpNotification()); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(got.To) != 1 || got.To[0] != "+15550100" {
		t.Errorf("to = %v", got.To)
	}
	if len(got.Message) > 160 {
		t.Errorf("sms message is %d chars, want <= 160", len(got.Message))
	}
	if !strings.Contains(got.Message, "[CRITICAL]") {
		t.Errorf("message = %q", got.Message)
	}
}

func TestNewSMSSender_RequiresURL(t *testing.T) {
	if _, err := NewSMSSender(SMSGatewayConfig{}, http.DefaultClient); err == nil {
		t.Fatal("expected error for missing gateway url")
	}
}

func TestSlackSender_Send(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewSlackSender(srv.Client())
	ch := &domain.NotificationChannel{
		ID: "ch-1", Type: domain.ChannelSlack,
		Settings: domain.ChannelSettings{URL: srv.URL},
	}

	if err := sender.Send(context.Background(), ch, httpNotification()); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	blocks, ok := body["blocks"].([]any)
	if !ok || len(blocks) == 0 {
		t.Fatalf("payload should carry blocks, got %v", body)
	}
}
