// Package evaluator implements the pure condition-evaluation step of the
// alerting pipeline. It maps (configuration, event) pairs to matches and
// carries no state, so it is safe to call from any number of
// event-processing workers concurrently.
package evaluator

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"netpulse/internal/domain"
)

// Match pairs a configuration with the trigger extracted from the event
// that satisfied it.
type Match struct {
	Config  *domain.AlertConfiguration
	Trigger *domain.Trigger
}

// Evaluator evaluates events against alert configurations. The logger is
// only used for warnings about malformed configurations, which are skipped
// rather than failing the batch.
type Evaluator struct {
	logger *slog.Logger
}

// New creates a new evaluator.
func New(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// EvaluateMetric returns the subset of enabled threshold configurations
// matched by the metric event, each paired with the triggering value.
func (e *Evaluator) EvaluateMetric(configs []*domain.AlertConfiguration, ev *domain.MetricEvent) []Match {
	var matches []Match
	for _, cfg := range configs {
		if !cfg.Enabled || cfg.ConditionType != domain.ConditionThreshold {
			continue
		}
		if cfg.ServiceName != "" && cfg.ServiceName != ev.ServiceName {
			continue
		}
		if cfg.MetricType != ev.MetricType {
			continue
		}
		if !cfg.Comparator.IsValid() {
			e.logger.Warn("skipping malformed threshold configuration",
				"config_id", cfg.ID,
				"comparator", string(cfg.Comparator),
			)
			continue
		}
		if !Compare(ev.Value, cfg.Threshold, cfg.Comparator) {
			continue
		}

		value := ev.Value
		matches = append(matches, Match{
			Config: cfg,
			Trigger: &domain.Trigger{
				Value:       &value,
				ServiceName: ev.ServiceName,
				Message: fmt.Sprintf("%s %s is %g (%s %g)",
					ev.ServiceName, ev.MetricType, ev.Value, cfg.Comparator, cfg.Threshold),
				At: eventTime(ev.Timestamp),
			},
		})
	}
	return matches
}

// EvaluateLog returns the subset of enabled pattern configurations matched
// by the log event, each paired with the matched pattern.
func (e *Evaluator) EvaluateLog(configs []*domain.AlertConfiguration, ev *domain.LogEvent) []Match {
	var matches []Match
	for _, cfg := range configs {
		if !cfg.Enabled || cfg.ConditionType != domain.ConditionPattern {
			continue
		}
		if cfg.ServiceName != "" && cfg.ServiceName != ev.ServiceName {
			continue
		}
		if cfg.LogLevel != "" && !strings.EqualFold(cfg.LogLevel, ev.Level) {
			continue
		}
		// An empty pattern never matches.
		if cfg.Pattern == "" {
			e.logger.Warn("skipping pattern configuration with empty pattern",
				"config_id", cfg.ID,
			)
			continue
		}

		matched, err := matchPattern(cfg, ev.Message)
		if err != nil {
			e.logger.Warn("skipping malformed pattern configuration",
				"config_id", cfg.ID,
				"pattern", cfg.Pattern,
				"error", err,
			)
			continue
		}
		if !matched {
			continue
		}

		matches = append(matches, Match{
			Config: cfg,
			Trigger: &domain.Trigger{
				Pattern:     cfg.Pattern,
				ServiceName: ev.ServiceName,
				Message: fmt.Sprintf("%s log matched pattern %q: %s",
					ev.ServiceName, cfg.Pattern, ev.Message),
				At: eventTime(ev.Timestamp),
			},
		})
	}
	return matches
}

// matchPattern checks the log message against the configuration's pattern,
// as a substring or as a regular expression when IsRegex is set.
func matchPattern(cfg *domain.AlertConfiguration, message string) (bool, error) {
	if !cfg.IsRegex {
		return strings.Contains(message, cfg.Pattern), nil
	}
	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(message), nil
}

// Compare applies a threshold comparator with standard numeric semantics.
// eq and neq use exact floating-point equality. That is faithful to how
// configurations have always behaved here, but exact equality on sampled
// float metrics rarely matches anything; treat it as a sharp edge when
// authoring configurations.
func Compare(value, threshold float64, cmp domain.Comparator) bool {
	switch cmp {
	case domain.ComparatorGT:
		return value > threshold
	case domain.ComparatorLT:
		return value < threshold
	case domain.ComparatorGTE:
		return value >= threshold
	case domain.ComparatorLTE:
		return value <= threshold
	case domain.ComparatorEQ:
		return value == threshold
	case domain.ComparatorNEQ:
		return value != threshold
	default:
		return false
	}
}

// eventTime normalizes a possibly-zero event timestamp. Events from
// misbehaving producers occasionally arrive without one.
func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
