package domain

import (
	"errors"
	"testing"
	"time"
)

func testConfig() *AlertConfiguration {
	return &AlertConfiguration{
		ID:            "cfg-1",
		Name:          "High CPU",
		ServiceName:   "radius",
		ConditionType: ConditionThreshold,
		MetricType:    "cpu_usage",
		Threshold:     90,
		Comparator:    ComparatorGT,
		Severity:      SeverityCritical,
		Enabled:       true,
	}
}

func testTrigger() *Trigger {
	v := 95.5
	return &Trigger{
		Value:       &v,
		ServiceName: "radius",
		Message:     "cpu_usage 95.5 gt 90",
		At:          time.Now().UTC(),
	}
}

func TestNewAlert(t *testing.T) {
	cfg := testConfig()
	trig := testTrigger()

	a := NewAlert(cfg, trig)

	if a.Status != AlertStatusActive {
		t.Errorf("Status = %v, want active", a.Status)
	}
	if a.ConfigID != cfg.ID {
		t.Errorf("ConfigID = %v, want %v", a.ConfigID, cfg.ID)
	}
	if a.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical", a.Severity)
	}
	if a.ServiceName != "radius" {
		t.Errorf("ServiceName = %v, want radius", a.ServiceName)
	}
	if a.TriggeredValue == nil || *a.TriggeredValue != 95.5 {
		t.Errorf("TriggeredValue = %v, want 95.5", a.TriggeredValue)
	}
	if a.NotificationSent {
		t.Error("new alert should not be marked notified")
	}
}

func TestAlert_Acknowledge(t *testing.T) {
	a := NewAlert(testConfig(), testTrigger())
	now := time.Now().UTC()

	if err := a.Acknowledge("alice", now); err != nil {
		t.Fatalf("Acknowledge error: %v", err)
	}
	if a.Status != AlertStatusAcknowledged {
		t.Errorf("Status = %v, want acknowledged", a.Status)
	}
	if a.AcknowledgedBy != "alice" {
		t.Errorf("AcknowledgedBy = %v, want alice", a.AcknowledgedBy)
	}

	// Second acknowledge is a no-op and keeps the original actor.
	if err := a.Acknowledge("bob", now.Add(time.Minute)); err != nil {
		t.Fatalf("second Acknowledge error: %v", err)
	}
	if a.AcknowledgedBy != "alice" {
		t.Errorf("AcknowledgedBy = %v, want alice after repeated acknowledge", a.AcknowledgedBy)
	}
}

func TestAlert_AcknowledgeResolved(t *testing.T) {
	a := NewAlert(testConfig(), testTrigger())
	now := time.Now().UTC()

	if err := a.Resolve("alice", "", now); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if err := a.Acknowledge("bob", now); !errors.Is(err, ErrAlertResolved) {
		t.Errorf("Acknowledge on resolved = %v, want ErrAlertResolved", err)
	}
}

func TestAlert_ResolveIsTerminal(t *testing.T) {
	a := NewAlert(testConfig(), testTrigger())
	now := time.Now().UTC()

	if err := a.Resolve("alice", "fixed", now); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !a.IsResolved() {
		t.Fatal("alert should be resolved")
	}
	firstResolvedAt := *a.ResolvedAt

	// Re-resolve applies only the comment.
	if err := a.Resolve("bob", "actually dns", now.Add(time.Hour)); err != nil {
		t.Fatalf("second Resolve error: %v", err)
	}
	if a.Comment != "actually dns" {
		t.Errorf("Comment = %v, want updated comment", a.Comment)
	}
	if a.ResolvedBy != "alice" {
		t.Errorf("ResolvedBy = %v, want alice", a.ResolvedBy)
	}
	if !a.ResolvedAt.Equal(firstResolvedAt) {
		t.Errorf("ResolvedAt changed on re-resolve: %v -> %v", firstResolvedAt, a.ResolvedAt)
	}
}

func TestAlert_ResolveSkipsAcknowledge(t *testing.T) {
	a := NewAlert(testConfig(), testTrigger())

	if err := a.Resolve("alice", "", time.Now()); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if a.AcknowledgedAt != nil {
		t.Error("AcknowledgedAt should stay nil when acknowledgment was skipped")
	}
}
