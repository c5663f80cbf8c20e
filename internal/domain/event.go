package domain

import (
	"errors"
	"time"
)

// EventKind discriminates event envelopes on the queue.
type EventKind string

const (
	EventKindMetric EventKind = "metric"
	EventKindLog    EventKind = "log"
)

// Validation errors for events.
var (
	ErrEmptyServiceName = errors.New("service_name is required")
	ErrEmptyMetricType  = errors.New("metric_type is required")
	ErrEmptyLogLevel    = errors.New("level is required")
	ErrEmptyLogMessage  = errors.New("message is required")
	ErrInvalidEventKind = errors.New("kind must be 'metric' or 'log'")
)

// MetricEvent is one sampled measurement produced by the metrics-collection
// subsystem. The sampling mechanics are outside this core; events arrive
// over the queue.
type MetricEvent struct {
	ServiceName string            `json:"service_name"`
	HostName    string            `json:"host_name"`
	MetricType  string            `json:"metric_type"`
	Value       float64           `json:"value"`
	Unit        string            `json:"unit,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// Validate checks the metric event has all required fields.
func (e *MetricEvent) Validate() error {
	if e.ServiceName == "" {
		return ErrEmptyServiceName
	}
	if e.MetricType == "" {
		return ErrEmptyMetricType
	}
	return nil
}

// LogEvent is one log line produced by the logging subsystem.
type LogEvent struct {
	ServiceName string    `json:"service_name"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks the log event has all required fields.
func (e *LogEvent) Validate() error {
	if e.ServiceName == "" {
		return ErrEmptyServiceName
	}
	if e.Level == "" {
		return ErrEmptyLogLevel
	}
	if e.Message == "" {
		return ErrEmptyLogMessage
	}
	return nil
}

// EventEnvelope is the wire format carried on the message queue. Exactly
// one of Metric or Log is set, selected by Kind.
type EventEnvelope struct {
	Kind   EventKind    `json:"kind"`
	Metric *MetricEvent `json:"metric,omitempty"`
	Log    *LogEvent    `json:"log,omitempty"`

	// ReceivedAt is stamped by the ingest service.
	ReceivedAt time.Time `json:"received_at"`
}

// Validate checks the envelope carries a well-formed event of its kind.
func (env *EventEnvelope) Validate() error {
	switch env.Kind {
	case EventKindMetric:
		if env.Metric == nil {
			return ErrInvalidEventKind
		}
		return env.Metric.Validate()
	case EventKindLog:
		if env.Log == nil {
			return ErrInvalidEventKind
		}
		return env.Log.Validate()
	default:
		return ErrInvalidEventKind
	}
}

// ServiceName returns the service the enclosed event belongs to.
func (env *EventEnvelope) ServiceName() string {
	switch env.Kind {
	case EventKindMetric:
		if env.Metric != nil {
			return env.Metric.ServiceName
		}
	case EventKindLog:
		if env.Log != nil {
			return env.Log.ServiceName
		}
	}
	return ""
}
