// Package domain contains the core business entities and value objects for
// NetPulse. These models represent the ubiquitous language of the alerting
// and synchronization domain.
package domain

import (
	"errors"
	"regexp"
	"time"
)

// ErrConfigNotFound is returned when an alert configuration cannot be found.
var ErrConfigNotFound = errors.New("alert configuration not found")

// Severity represents the severity level of an alert configuration.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IsValid returns true if the severity is a known valid value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// ConditionType selects which branch of a configuration is evaluated.
type ConditionType string

const (
	// ConditionThreshold compares a metric value against a threshold.
	ConditionThreshold ConditionType = "threshold"
	// ConditionPattern matches a log message against a pattern.
	ConditionPattern ConditionType = "pattern"
)

// IsValid returns true if the condition type is a known valid value.
func (t ConditionType) IsValid() bool {
	return t == ConditionThreshold || t == ConditionPattern
}

// Comparator is the comparison operator for threshold conditions.
type Comparator string

const (
	ComparatorGT  Comparator = "gt"
	ComparatorLT  Comparator = "lt"
	ComparatorGTE Comparator = "gte"
	ComparatorLTE Comparator = "lte"
	ComparatorEQ  Comparator = "eq"
	ComparatorNEQ Comparator = "neq"
)

// IsValid returns true if the comparator is a known valid value.
func (c Comparator) IsValid() bool {
	switch c {
	case ComparatorGT, ComparatorLT, ComparatorGTE, ComparatorLTE, ComparatorEQ, ComparatorNEQ:
		return true
	default:
		return false
	}
}

// Validation errors for AlertConfiguration.
var (
	ErrEmptyConfigName     = errors.New("name is required")
	ErrInvalidCondition    = errors.New("condition_type must be 'threshold' or 'pattern'")
	ErrInvalidSeverity     = errors.New("severity must be 'critical', 'warning', or 'info'")
	ErrMissingMetricType   = errors.New("metric_type is required for threshold conditions")
	ErrInvalidComparator   = errors.New("comparator must be one of gt, lt, gte, lte, eq, neq")
	ErrEmptyPattern        = errors.New("pattern is required for pattern conditions")
	ErrInvalidPatternRegex = errors.New("pattern is not a valid regular expression")
)

// AlertConfiguration is a user-defined rule describing what condition to
// watch and how to react. The evaluation path only reads configurations;
// they are created and updated through admin operations.
type AlertConfiguration struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// ServiceName filters which service's events this configuration
	// applies to. Empty matches every service.
	ServiceName string `json:"service_name,omitempty"`

	// ConditionType selects the threshold or pattern branch.
	ConditionType ConditionType `json:"condition_type"`

	// Threshold branch: events of MetricType are compared to Threshold
	// with Comparator.
	MetricType string     `json:"metric_type,omitempty"`
	Threshold  float64    `json:"threshold,omitempty"`
	Comparator Comparator `json:"comparator,omitempty"`

	// Pattern branch: log events at LogLevel (empty = any level) whose
	// message contains Pattern, or matches it as a regular expression
	// when IsRegex is set.
	LogLevel string `json:"log_level,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	IsRegex  bool   `json:"is_regex,omitempty"`

	Severity Severity `json:"severity"`

	// Enabled soft-disables the configuration without deleting history.
	Enabled bool `json:"enabled"`

	// Cooldown is the minimum time between successive alerts for this
	// configuration. Zero means no cooldown.
	Cooldown time.Duration `json:"cooldown"`

	// AutoResolveAfter resolves unresolved alerts of this configuration
	// once their age exceeds it. Zero disables auto-resolution.
	AutoResolveAfter time.Duration `json:"auto_resolve_after"`

	// ChannelIDs is the ordered list of notification channels to fan out
	// to when an alert is raised.
	ChannelIDs []string `json:"channel_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the configuration for structural problems. The evaluator
// additionally skips malformed configurations at evaluation time, so a bad
// row in the store degrades that one rule, never the batch.
func (c *AlertConfiguration) Validate() error {
	if c.Name == "" {
		return ErrEmptyConfigName
	}
	if !c.ConditionType.IsValid() {
		return ErrInvalidCondition
	}
	if !c.Severity.IsValid() {
		return ErrInvalidSeverity
	}

	switch c.ConditionType {
	case ConditionThreshold:
		if c.MetricType == "" {
			return ErrMissingMetricType
		}
		if !c.Comparator.IsValid() {
			return ErrInvalidComparator
		}
	case ConditionPattern:
		if c.Pattern == "" {
			return ErrEmptyPattern
		}
		if c.IsRegex {
			if _, err := regexp.Compile(c.Pattern); err != nil {
				return ErrInvalidPatternRegex
			}
		}
	}
	return nil
}

// ConfigFilter provides filtering options for querying configurations.
type ConfigFilter struct {
	ServiceName string
	Enabled     *bool
	Limit       int
	Offset      int
}
