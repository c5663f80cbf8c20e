package domain

import (
	"errors"
	"time"
)

// ErrChannelNotFound is returned when a notification channel cannot be found.
var ErrChannelNotFound = errors.New("notification channel not found")

// ChannelType identifies a notification delivery mechanism. The set is
// closed: adding a channel type is a compile-time change, and the
// dispatcher maps each type to a dedicated sender rather than branching
// on strings.
type ChannelType string

const (
	ChannelEmail   ChannelType = "email"
	ChannelSMS     ChannelType = "sms"
	ChannelWebhook ChannelType = "webhook"
	ChannelSlack   ChannelType = "slack"
	ChannelCustom  ChannelType = "custom"
)

// IsValid returns true if the channel type is a known valid value.
func (t ChannelType) IsValid() bool {
	switch t {
	case ChannelEmail, ChannelSMS, ChannelWebhook, ChannelSlack, ChannelCustom:
		return true
	default:
		return false
	}
}

// ChannelSettings holds per-type destination configuration. Only the
// fields relevant to the channel's type are populated; the rest stay at
// their zero values. Stored as a JSONB column.
type ChannelSettings struct {
	// Recipients are email addresses for the email channel.
	Recipients []string `json:"recipients,omitempty"`

	// PhoneNumbers are destinations for the SMS channel.
	PhoneNumbers []string `json:"phone_numbers,omitempty"`

	// URL is the target for webhook, slack (incoming webhook) and custom
	// channels.
	URL string `json:"url,omitempty"`

	// Headers are extra HTTP headers sent by the custom channel.
	Headers map[string]string `json:"headers,omitempty"`
}

// NotificationChannel is an external delivery mechanism configured per
// alert configuration. Channels are referenced, not owned: one channel may
// be shared by many configurations.
type NotificationChannel struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     ChannelType     `json:"type"`
	Enabled  bool            `json:"enabled"`
	Settings ChannelSettings `json:"settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validation errors for NotificationChannel.
var (
	ErrEmptyChannelName   = errors.New("name is required")
	ErrInvalidChannelType = errors.New("type must be one of email, sms, webhook, slack, custom")
	ErrMissingRecipients  = errors.New("recipients are required for email channels")
	ErrMissingPhones      = errors.New("phone_numbers are required for sms channels")
	ErrMissingURL         = errors.New("url is required for this channel type")
)

// Validate checks the channel for structural problems.
func (ch *NotificationChannel) Validate() error {
	if ch.Name == "" {
		return ErrEmptyChannelName
	}
	if !ch.Type.IsValid() {
		return ErrInvalidChannelType
	}
	switch ch.Type {
	case ChannelEmail:
		if len(ch.Settings.Recipients) == 0 {
			return ErrMissingRecipients
		}
	case ChannelSMS:
		if len(ch.Settings.PhoneNumbers) == 0 {
			return ErrMissingPhones
		}
	case ChannelWebhook, ChannelSlack, ChannelCustom:
		if ch.Settings.URL == "" {
			return ErrMissingURL
		}
	}
	return nil
}
