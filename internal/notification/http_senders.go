package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"netpulse/internal/domain"
)

// WebhookPayload is the JSON body posted by the webhook and custom senders.
type WebhookPayload struct {
	AlertID        string    `json:"alert_id"`
	ConfigID       string    `json:"config_id"`
	ConfigName     string    `json:"config_name"`
	ServiceName    string    `json:"service_name"`
	Severity       string    `json:"severity"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	TriggeredAt    time.Time `json:"triggered_at"`
	TriggeredValue *float64  `json:"triggered_value,omitempty"`
	MatchedPattern string    `json:"matched_pattern,omitempty"`
}

func buildWebhookPayload(n *Notification) *WebhookPayload {
	return &WebhookPayload{
		AlertID:        n.Alert.ID,
		ConfigID:       n.Alert.ConfigID,
		ConfigName:     n.Config.Name,
		ServiceName:    n.Alert.ServiceName,
		Severity:       string(n.Alert.Severity),
		Status:         string(n.Alert.Status),
		Message:        n.Alert.Message,
		TriggeredAt:    n.Alert.TriggeredAt,
		TriggeredValue: n.Alert.TriggeredValue,
		MatchedPattern: n.Alert.MatchedPattern,
	}
}

// postJSON sends body to url and treats any non-2xx response as an error.
func postJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// WebhookSender posts a JSON payload to the channel's URL.
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender creates a webhook sender using the given HTTP client.
func NewWebhookSender(client *http.Client) *WebhookSender {
	return &WebhookSender{client: client}
}

func (s *WebhookSender) Type() domain.ChannelType {
	return domain.ChannelWebhook
}

func (s *WebhookSender) Send(ctx context.Context, channel *domain.NotificationChannel, n *Notification) error {
	return postJSON(ctx, s.client, channel.Settings.URL, buildWebhookPayload(n), nil)
}

// CustomSender posts a JSON payload to the channel's URL with the extra
// headers configured on the channel.
type CustomSender struct {
	client *http.Client
}

// NewCustomSender creates a custom sender using the given HTTP client.
func NewCustomSender(client *http.Client) *CustomSender {
	return &CustomSender{client: client}
}

func (s *CustomSender) Type() domain.ChannelType {
	return domain.ChannelCustom
}

func (s *CustomSender) Send(ctx context.Context, channel *domain.NotificationChannel, n *Notification) error {
	return postJSON(ctx, s.client, channel.Settings.URL, buildWebhookPayload(n), channel.Settings.Headers)
}

// SMSGatewayConfig holds the HTTP SMS gateway settings.
type SMSGatewayConfig struct {
	URL   string
	Token string
}

// SMSSender delivers a short plain-text rendering of the alert through an
// HTTP SMS gateway.
type SMSSender struct {
	config SMSGatewayConfig
	client *http.Client
}

// NewSMSSender creates an SMS sender for the given gateway.
func NewSMSSender(config SMSGatewayConfig, client *http.Client) (*SMSSender, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("sms gateway url is required")
	}
	return &SMSSender{config: config, client: client}, nil
}

func (s *SMSSender) Type() domain.ChannelType {
	return domain.ChannelSMS
}

// smsRequest is the gateway's submit payload.
type smsRequest struct {
	To      []string `json:"to"`
	Message string   `json:"message"`
}

func (s *SMSSender) Send(ctx context.Context, channel *domain.NotificationChannel, n *Notification) error {
	headers := map[string]string{}
	if s.config.Token != "" {
		headers["Authorization"] = "Bearer " + s.config.Token
	}
	return postJSON(ctx, s.client, s.config.URL, &smsRequest{
		To:      channel.Settings.PhoneNumbers,
		Message: smsText(n),
	}, headers)
}

// smsText renders the alert in a single SMS-sized line.
func smsText(n *Notification) string {
	text := Subject(n) + " " + n.Alert.Message
	const maxLen = 160
	if len(text) > maxLen {
		text = text[:maxLen-3] + "..."
	}
	return strings.ReplaceAll(text, "\n", " ")
}
