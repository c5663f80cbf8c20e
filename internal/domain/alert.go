package domain

import (
	"errors"
	"time"
)

// ErrAlertNotFound is returned when an alert cannot be found.
var ErrAlertNotFound = errors.New("alert not found")

// ErrAlertResolved is returned when a status transition is attempted
// on an alert that has already reached the terminal resolved state.
var ErrAlertResolved = errors.New("alert is resolved")

// SystemActor is the actor recorded for automatic transitions such as
// auto-resolution sweeps.
const SystemActor = "system"

// AlertStatus represents the current lifecycle state of an alert.
type AlertStatus string

const (
	// AlertStatusActive indicates the condition has fired and nobody has
	// taken ownership yet.
	AlertStatusActive AlertStatus = "active"
	// AlertStatusAcknowledged indicates an operator has taken ownership.
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	// AlertStatusResolved is the terminal state. A resolved alert is never
	// reopened; a new alert is raised instead once eligibility allows.
	AlertStatusResolved AlertStatus = "resolved"
)

// IsValid returns true if the status is a known valid value.
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusActive, AlertStatusAcknowledged, AlertStatusResolved:
		return true
	default:
		return false
	}
}

// Alert is one instance of a configuration's condition having fired.
// Alerts form an append-only history: they are created by the evaluation
// path, mutated only through status transitions, and physically deleted
// only by cascade when their owning configuration is removed.
//
// Invariant: at most one unresolved alert exists per ConfigID at any time.
// The store enforces this, not the callers.
type Alert struct {
	// ID is the unique database identifier for this alert.
	ID string `json:"id"`

	// ConfigID references the owning alert configuration.
	ConfigID string `json:"config_id"`

	// Status is the current lifecycle state.
	Status AlertStatus `json:"status"`

	// Severity is copied from the configuration at trigger time so the
	// history stays meaningful if the configuration is later edited.
	Severity Severity `json:"severity"`

	// ServiceName is the service the triggering event belonged to.
	ServiceName string `json:"service_name"`

	// Message is a human-readable description of what fired.
	Message string `json:"message"`

	// TriggeredAt is when the condition fired.
	TriggeredAt time.Time `json:"triggered_at"`

	// TriggeredValue is the metric value that violated a threshold
	// condition. Nil for pattern alerts.
	TriggeredValue *float64 `json:"triggered_value,omitempty"`

	// MatchedPattern is the configured pattern that matched, for pattern
	// alerts. Empty for threshold alerts.
	MatchedPattern string `json:"matched_pattern,omitempty"`

	// AcknowledgedAt and AcknowledgedBy record the acknowledge transition.
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`

	// ResolvedAt and ResolvedBy record the resolve transition.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`

	// Comment is free text attached by operators. It remains editable
	// after resolution; nothing else does.
	Comment string `json:"comment,omitempty"`

	// NotificationSent is true once at least one notification channel
	// accepted delivery for this alert. Left false when every channel
	// failed so a retry sweep can re-attempt later.
	NotificationSent bool `json:"notification_sent"`

	// SyncedToIndex is true once this alert's content has been written to
	// the secondary search index at least once.
	SyncedToIndex bool `json:"synced_to_index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Trigger carries the matched value extracted by the condition evaluator.
type Trigger struct {
	// Value is set for threshold matches.
	Value *float64 `json:"value,omitempty"`
	// Pattern is set for pattern matches.
	Pattern string `json:"pattern,omitempty"`
	// ServiceName is the service of the triggering event.
	ServiceName string `json:"service_name"`
	// Message describes what fired, built by the evaluator.
	Message string `json:"message"`
	// At is the event timestamp.
	At time.Time `json:"at"`
}

// NewAlert creates a new active alert for a configuration from a trigger.
func NewAlert(cfg *AlertConfiguration, trig *Trigger) *Alert {
	now := time.Now().UTC()
	return &Alert{
		ConfigID:       cfg.ID,
		Status:         AlertStatusActive,
		Severity:       cfg.Severity,
		ServiceName:    trig.ServiceName,
		Message:        trig.Message,
		TriggeredAt:    trig.At,
		TriggeredValue: trig.Value,
		MatchedPattern: trig.Pattern,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsResolved returns true if the alert has reached its terminal state.
func (a *Alert) IsResolved() bool {
	return a.Status == AlertStatusResolved
}

// IsUnresolved returns true while the alert is active or acknowledged.
func (a *Alert) IsUnresolved() bool {
	return !a.IsResolved()
}

// Acknowledge transitions the alert from active to acknowledged,
// recording the actor and timestamp. Acknowledging an already-acknowledged
// alert is a no-op that keeps the original actor and time.
func (a *Alert) Acknowledge(actor string, now time.Time) error {
	switch a.Status {
	case AlertStatusAcknowledged:
		return nil
	case AlertStatusResolved:
		return ErrAlertResolved
	default:
		t := now.UTC()
		a.Status = AlertStatusAcknowledged
		a.AcknowledgedAt = &t
		a.AcknowledgedBy = actor
		a.UpdatedAt = t
		return nil
	}
}

// Resolve transitions the alert into the terminal resolved state. Both
// active and acknowledged alerts may be resolved directly (acknowledgment
// may be skipped). Resolving an already-resolved alert only applies the
// comment: resolvedAt and resolvedBy keep their original values.
func (a *Alert) Resolve(actor, comment string, now time.Time) error {
	if a.Status == AlertStatusResolved {
		if comment != "" {
			a.Comment = comment
			a.UpdatedAt = now.UTC()
		}
		return nil
	}

	t := now.UTC()
	a.Status = AlertStatusResolved
	a.ResolvedAt = &t
	a.ResolvedBy = actor
	if comment != "" {
		a.Comment = comment
	}
	a.UpdatedAt = t
	return nil
}

// MarkNotified records that at least one notification channel succeeded.
func (a *Alert) MarkNotified() {
	a.NotificationSent = true
	a.UpdatedAt = time.Now().UTC()
}

// AlertFilter provides filtering options for querying alert history.
type AlertFilter struct {
	ConfigID    string
	ServiceName string
	Status      AlertStatus
	Limit       int
	Offset      int
}
