package syncer

import (
	"context"
	"encoding/json"
	"fmt"

	"netpulse/internal/store"
)

// SourceAlerts and friends are the source names, and therefore the index
// name segments and document id prefixes, for each synced row type.
const (
	SourceAlerts  = "alerts"
	SourceLogs    = "service-logs"
	SourceMetrics = "system-metrics"
	SourceStatus  = "service-status"
)

type alertSource struct {
	repo store.AlertRepository
}

// NewAlertSource wraps the alert repository as a sync source.
func NewAlertSource(repo store.AlertRepository) Source {
	return &alertSource{repo: repo}
}

func (s *alertSource) Name() string { return SourceAlerts }

func (s *alertSource) FetchUnsynced(ctx context.Context, limit int) ([]Record, error) {
	alerts, err := s.repo.FetchUnsynced(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(alerts))
	for _, a := range alerts {
		body, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal alert %s: %w", a.ID, err)
		}
		records = append(records, Record{ID: a.ID, Timestamp: a.TriggeredAt, Body: body})
	}
	return records, nil
}

func (s *alertSource) MarkSynced(ctx context.Context, ids []string) error {
	return s.repo.MarkSynced(ctx, ids)
}

type logSource struct {
	repo store.LogRepository
}

// NewLogSource wraps the log repository as a sync source.
func NewLogSource(repo store.LogRepository) Source {
	return &logSource{repo: repo}
}

func (s *logSource) Name() string { return SourceLogs }

func (s *logSource) FetchUnsynced(ctx context.Context, limit int) ([]Record, error) {
	logs, err := s.repo.FetchUnsynced(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(logs))
	for _, l := range logs {
		body, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal service log %s: %w", l.ID, err)
		}
		records = append(records, Record{ID: l.ID, Timestamp: l.Timestamp, Body: body})
	}
	return records, nil
}

func (s *logSource) MarkSynced(ctx context.Context, ids []string) error {
	return s.repo.MarkSynced(ctx, ids)
}

type metricSource struct {
	repo store.MetricRepository
}

// NewMetricSource wraps the metric repository as a sync source.
func NewMetricSource(repo store.MetricRepository) Source {
	return &metricSource{repo: repo}
}

func (s *metricSource) Name() string { return SourceMetrics }

func (s *metricSource) FetchUnsynced(ctx context.Context, limit int) ([]Record, error) {
	ms, err := s.repo.FetchUnsynced(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(ms))
	for _, m := range ms {
		body, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal system metric %s: %w", m.ID, err)
		}
		records = append(records, Record{ID: m.ID, Timestamp: m.Timestamp, Body: body})
	}
	return records, nil
}

func (s *metricSource) MarkSynced(ctx context.Context, ids []string) error {
	return s.repo.MarkSynced(ctx, ids)
}

type statusSource struct {
	repo store.StatusRepository
}

// NewStatusSource wraps the status repository as a sync source.
func NewStatusSource(repo store.StatusRepository) Source {
	return &statusSource{repo: repo}
}

func (s *statusSource) Name() string { return SourceStatus }

func (s *statusSource) FetchUnsynced(ctx context.Context, limit int) ([]Record, error) {
	statuses, err := s.repo.FetchUnsynced(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(statuses))
	for _, st := range statuses {
		body, err := json.Marshal(st)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal service status %s: %w", st.ID, err)
		}
		records = append(records, Record{ID: st.ID, Timestamp: st.CheckedAt, Body: body})
	}
	return records, nil
}

func (s *statusSource) MarkSynced(ctx context.Context, ids []string) error {
	return s.repo.MarkSynced(ctx, ids)
}
