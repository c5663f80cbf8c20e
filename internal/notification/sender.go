// Package notification delivers alert notifications over the configured
// channels. Each channel type has its own sender; the dispatcher fans an
// alert out to every bound channel independently.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"netpulse/internal/domain"
)

// Notification is the material a sender formats and delivers.
type Notification struct {
	Alert  *domain.Alert
	Config *domain.AlertConfiguration
}

// Sender delivers a notification over one channel type.
type Sender interface {
	// Type identifies which channel type this sender handles.
	Type() domain.ChannelType
	Send(ctx context.Context, channel *domain.NotificationChannel, n *Notification) error
}

// Subject builds the one-line summary used by every channel type.
func Subject(n *Notification) string {
	return fmt.Sprintf("[%s] %s: %s",
		strings.ToUpper(string(n.Alert.Severity)),
		n.Config.Name,
		n.Alert.ServiceName)
}

// Body builds a plain-text rendering of the alert.
func Body(n *Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert: %s\n", n.Config.Name)
	fmt.Fprintf(&b, "Service: %s\n", n.Alert.ServiceName)
	fmt.Fprintf(&b, "Severity: %s\n", n.Alert.Severity)
	fmt.Fprintf(&b, "Triggered: %s\n", n.Alert.TriggeredAt.Format(time.RFC3339))
	if n.Alert.TriggeredValue != nil {
		fmt.Fprintf(&b, "Value: %g\n", *n.Alert.TriggeredValue)
	}
	if n.Alert.MatchedPattern != "" {
		fmt.Fprintf(&b, "Pattern: %s\n", n.Alert.MatchedPattern)
	}
	fmt.Fprintf(&b, "\n%s\n", n.Alert.Message)
	return b.String()
}
