package domain

import (
	"errors"
	"testing"
)

func validThresholdConfig() *AlertConfiguration {
	return &AlertConfiguration{
		Name:          "High CPU",
		ServiceName:   "radius",
		ConditionType: ConditionThreshold,
		MetricType:    "cpu_usage",
		Threshold:     90,
		Comparator:    ComparatorGT,
		Severity:      SeverityWarning,
		Enabled:       true,
	}
}

func validPatternConfig() *AlertConfiguration {
	return &AlertConfiguration{
		Name:          "Timeout errors",
		ConditionType: ConditionPattern,
		LogLevel:      "error",
		Pattern:       "connection timed out",
		Severity:      SeverityCritical,
		Enabled:       true,
	}
}

func TestAlertConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AlertConfiguration)
		base    func() *AlertConfiguration
		wantErr error
	}{
		{"valid threshold", func(c *AlertConfiguration) {}, validThresholdConfig, nil},
		{"valid pattern", func(c *AlertConfiguration) {}, validPatternConfig, nil},
		{"empty name", func(c *AlertConfiguration) { c.Name = "" }, validThresholdConfig, ErrEmptyConfigName},
		{"bad condition type", func(c *AlertConfiguration) { c.ConditionType = "absolute" }, validThresholdConfig, ErrInvalidCondition},
		{"bad severity", func(c *AlertConfiguration) { c.Severity = "fatal" }, validThresholdConfig, ErrInvalidSeverity},
		{"threshold without metric type", func(c *AlertConfiguration) { c.MetricType = "" }, validThresholdConfig, ErrMissingMetricType},
		{"threshold bad comparator", func(c *AlertConfiguration) { c.Comparator = "above" }, validThresholdConfig, ErrInvalidComparator},
		{"pattern empty", func(c *AlertConfiguration) { c.Pattern = "" }, validPatternConfig, ErrEmptyPattern},
		{"pattern invalid regex", func(c *AlertConfiguration) { c.IsRegex = true; c.Pattern = "([" }, validPatternConfig, ErrInvalidPatternRegex},
		{"pattern valid regex", func(c *AlertConfiguration) { c.IsRegex = true; c.Pattern = `timeout after \d+ms` }, validPatternConfig, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.base()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventEnvelope_Validate(t *testing.T) {
	metric := &MetricEvent{ServiceName: "radius", MetricType: "cpu_usage", Value: 42}
	log := &LogEvent{ServiceName: "radius", Level: "error", Message: "boom"}

	tests := []struct {
		name    string
		env     EventEnvelope
		wantErr error
	}{
		{"valid metric", EventEnvelope{Kind: EventKindMetric, Metric: metric}, nil},
		{"valid log", EventEnvelope{Kind: EventKindLog, Log: log}, nil},
		{"unknown kind", EventEnvelope{Kind: "trace"}, ErrInvalidEventKind},
		{"metric kind without payload", EventEnvelope{Kind: EventKindMetric}, ErrInvalidEventKind},
		{"log kind without payload", EventEnvelope{Kind: EventKindLog}, ErrInvalidEventKind},
		{"metric missing service", EventEnvelope{Kind: EventKindMetric, Metric: &MetricEvent{MetricType: "cpu_usage"}}, ErrEmptyServiceName},
		{"log missing message", EventEnvelope{Kind: EventKindLog, Log: &LogEvent{ServiceName: "radius", Level: "error"}}, ErrEmptyLogMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.env.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventEnvelope_ServiceName(t *testing.T) {
	env := EventEnvelope{Kind: EventKindMetric, Metric: &MetricEvent{ServiceName: "dhcp"}}
	if got := env.ServiceName(); got != "dhcp" {
		t.Errorf("ServiceName() = %q, want dhcp", got)
	}
	empty := EventEnvelope{Kind: "trace"}
	if got := empty.ServiceName(); got != "" {
		t.Errorf("ServiceName() = %q, want empty", got)
	}
}
