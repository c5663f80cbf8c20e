package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"netpulse/internal/domain"
)

// LogRepository is an in-memory implementation of store.LogRepository.
type LogRepository struct {
	mu   sync.RWMutex
	logs map[string]*domain.ServiceLog
}

// NewLogRepository creates a new in-memory log repository.
func NewLogRepository() *LogRepository {
	return &LogRepository{logs: make(map[string]*domain.ServiceLog)}
}

// Insert stores a new log row.
func (r *LogRepository) Insert(ctx context.Context, l *domain.ServiceLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *l
	r.logs[l.ID] = &stored
	return nil
}

// FetchUnsynced returns up to limit unsynced log rows, oldest first.
func (r *LogRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.ServiceLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.ServiceLog
	for _, l := range r.logs {
		if l.SyncedToIndex {
			continue
		}
		result := *l
		logs = append(logs, &result)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.Before(logs[j].CreatedAt)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// MarkSynced flags log rows as written to the secondary index.
func (r *LogRepository) MarkSynced(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if l, exists := r.logs[id]; exists {
			l.SyncedToIndex = true
		}
	}
	return nil
}

// MetricRepository is an in-memory implementation of store.MetricRepository.
type MetricRepository struct {
	mu      sync.RWMutex
	metrics map[string]*domain.SystemMetric
}

// NewMetricRepository creates a new in-memory metric repository.
func NewMetricRepository() *MetricRepository {
	return &MetricRepository{metrics: make(map[string]*domain.SystemMetric)}
}

// Insert stores a new metric row.
func (r *MetricRepository) Insert(ctx context.Context, m *domain.SystemMetric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *m
	r.metrics[m.ID] = &stored
	return nil
}

// FetchUnsynced returns up to limit unsynced metric rows, oldest first.
func (r *MetricRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.SystemMetric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var metrics []*domain.SystemMetric
	for _, m := range r.metrics {
		if m.SyncedToIndex {
			continue
		}
		result := *m
		metrics = append(metrics, &result)
	}
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].CreatedAt.Before(metrics[j].CreatedAt)
	})
	if limit > 0 && len(metrics) > limit {
		metrics = metrics[:limit]
	}
	return metrics, nil
}

// MarkSynced flags metric rows as written to the secondary index.
func (r *MetricRepository) MarkSynced(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if m, exists := r.metrics[id]; exists {
			m.SyncedToIndex = true
		}
	}
	return nil
}

// StatusRepository is an in-memory implementation of store.StatusRepository.
type StatusRepository struct {
	mu sync.RWMutex

	// statuses is keyed by service name: one current row per service.
	statuses map[string]*domain.ServiceStatus
}

// NewStatusRepository creates a new in-memory status repository.
func NewStatusRepository() *StatusRepository {
	return &StatusRepository{statuses: make(map[string]*domain.ServiceStatus)}
}

// Upsert inserts or replaces a service's status row and resets its sync flag.
func (r *StatusRepository) Upsert(ctx context.Context, s *domain.ServiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
	stored.SyncedToIndex = false
	if existing, ok := r.statuses[s.ServiceName]; ok {
		stored.ID = existing.ID
	}
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	r.statuses[s.ServiceName] = &stored
	return nil
}

// ListServiceNames returns every service with a status row, sorted.
func (r *StatusRepository) ListServiceNames(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.statuses))
	for name := range r.statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// FetchUnsynced returns up to limit unsynced status rows, oldest first.
func (r *StatusRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.ServiceStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var statuses []*domain.ServiceStatus
	for _, s := range r.statuses {
		if s.SyncedToIndex {
			continue
		}
		result := *s
		statuses = append(statuses, &result)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].CheckedAt.Before(statuses[j].CheckedAt)
	})
	if limit > 0 && len(statuses) > limit {
		statuses = statuses[:limit]
	}
	return statuses, nil
}

// MarkSynced flags status rows as written to the secondary index.
func (r *StatusRepository) MarkSynced(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marked := make(map[string]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	for _, s := range r.statuses {
		if marked[s.ID] {
			s.SyncedToIndex = true
		}
	}
	return nil
}
