// Package memory provides in-memory implementations of the store
// interfaces. They mirror the PostgreSQL semantics, including the
// one-unresolved-alert-per-configuration invariant, and are used for
// testing and local development without external dependencies.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"netpulse/internal/domain"
	"netpulse/internal/store"
)

// AlertRepository is an in-memory implementation of store.AlertRepository.
// A single mutex serializes raises the way the database's unique
// constraint does in production.
type AlertRepository struct {
	mu sync.RWMutex

	// alerts stores all alerts by ID.
	alerts map[string]*domain.Alert

	// unresolvedByConfig tracks the at-most-one unresolved alert per
	// configuration, mirroring the partial unique index.
	unresolvedByConfig map[string]string

	// lastTriggered tracks the most recent trigger time per
	// configuration, including resolved alerts, for cooldown checks.
	lastTriggered map[string]time.Time

	// configs is consulted by AutoResolveExpired for per-configuration
	// auto-resolve periods.
	configs *ConfigRepository
}

// NewAlertRepository creates a new in-memory alert repository. The config
// repository is only needed for auto-resolution sweeps and may be nil in
// tests that do not exercise them.
func NewAlertRepository(configs *ConfigRepository) *AlertRepository {
	return &AlertRepository{
		alerts:             make(map[string]*domain.Alert),
		unresolvedByConfig: make(map[string]string),
		lastTriggered:      make(map[string]time.Time),
		configs:            configs,
	}
}

// RaiseIfEligible atomically checks eligibility and creates the alert.
func (r *AlertRepository) RaiseIfEligible(ctx context.Context, cfg *domain.AlertConfiguration, trig *domain.Trigger, now time.Time) (*domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// One unresolved alert per configuration.
	if _, exists := r.unresolvedByConfig[cfg.ID]; exists {
		return nil, nil
	}

	// Cooldown window, measured from the last trigger regardless of
	// whether that alert has since been resolved.
	if cfg.Cooldown > 0 {
		if last, ok := r.lastTriggered[cfg.ID]; ok && now.Sub(last) < cfg.Cooldown {
			return nil, nil
		}
	}

	alert := domain.NewAlert(cfg, trig)
	alert.ID = uuid.New().String()

	stored := *alert
	r.alerts[alert.ID] = &stored
	r.unresolvedByConfig[cfg.ID] = alert.ID
	r.lastTriggered[cfg.ID] = alert.TriggeredAt

	result := stored
	return &result, nil
}

// Acknowledge transitions an alert to acknowledged.
func (r *AlertRepository) Acknowledge(ctx context.Context, id, actor string, now time.Time) (*domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, exists := r.alerts[id]
	if !exists {
		return nil, domain.ErrAlertNotFound
	}
	if err := alert.Acknowledge(actor, now); err != nil {
		return nil, err
	}

	result := *alert
	return &result, nil
}

// Resolve transitions an alert to resolved.
func (r *AlertRepository) Resolve(ctx context.Context, id, actor, comment string, now time.Time) (*domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, exists := r.alerts[id]
	if !exists {
		return nil, domain.ErrAlertNotFound
	}
	if err := alert.Resolve(actor, comment, now); err != nil {
		return nil, err
	}
	if r.unresolvedByConfig[alert.ConfigID] == id {
		delete(r.unresolvedByConfig, alert.ConfigID)
	}

	result := *alert
	return &result, nil
}

// AutoResolveExpired resolves unresolved alerts past their configuration's
// auto-resolve period.
func (r *AlertRepository) AutoResolveExpired(ctx context.Context, now time.Time) (int, error) {
	if r.configs == nil {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resolved := 0
	for configID, alertID := range r.unresolvedByConfig {
		cfg, err := r.configs.GetByID(ctx, configID)
		if err != nil || cfg.AutoResolveAfter <= 0 {
			continue
		}
		alert := r.alerts[alertID]
		if alert == nil || now.Sub(alert.TriggeredAt) < cfg.AutoResolveAfter {
			continue
		}
		if err := alert.Resolve(domain.SystemActor, "", now); err != nil {
			continue
		}
		delete(r.unresolvedByConfig, configID)
		resolved++
	}
	return resolved, nil
}

// MarkNotified sets the alert's notification flag.
func (r *AlertRepository) MarkNotified(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, exists := r.alerts[id]
	if !exists {
		return domain.ErrAlertNotFound
	}
	alert.MarkNotified()
	return nil
}

// GetByID retrieves an alert by its ID.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alert, exists := r.alerts[id]
	if !exists {
		return nil, domain.ErrAlertNotFound
	}
	result := *alert
	return &result, nil
}

// List retrieves alerts matching the filter, newest first.
func (r *AlertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var alerts []*domain.Alert
	for _, alert := range r.alerts {
		if filter.ConfigID != "" && alert.ConfigID != filter.ConfigID {
			continue
		}
		if filter.ServiceName != "" && alert.ServiceName != filter.ServiceName {
			continue
		}
		if filter.Status != "" && alert.Status != filter.Status {
			continue
		}
		result := *alert
		alerts = append(alerts, &result)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].TriggeredAt.After(alerts[j].TriggeredAt)
	})

	return paginate(alerts, filter.Limit, filter.Offset), nil
}

// CountUnresolvedByService summarizes unresolved alerts per service.
func (r *AlertRepository) CountUnresolvedByService(ctx context.Context) (map[string]store.UnresolvedCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]store.UnresolvedCount)
	for _, alert := range r.alerts {
		if alert.IsResolved() {
			continue
		}
		c := counts[alert.ServiceName]
		c.Total++
		if alert.Severity == domain.SeverityCritical {
			c.Critical++
		}
		counts[alert.ServiceName] = c
	}
	return counts, nil
}

// FetchUnsynced returns up to limit unsynced alerts, oldest first.
func (r *AlertRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var alerts []*domain.Alert
	for _, alert := range r.alerts {
		if alert.SyncedToIndex {
			continue
		}
		result := *alert
		alerts = append(alerts, &result)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
	})

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

// MarkSynced flags the given alerts as written to the secondary index.
func (r *AlertRepository) MarkSynced(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if alert, exists := r.alerts[id]; exists {
			alert.SyncedToIndex = true
		}
	}
	return nil
}

// DeleteByConfig removes all alerts of a configuration. Used by the config
// repository to mirror the database's cascade on delete.
func (r *AlertRepository) DeleteByConfig(configID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, alert := range r.alerts {
		if alert.ConfigID == configID {
			delete(r.alerts, id)
		}
	}
	delete(r.unresolvedByConfig, configID)
	delete(r.lastTriggered, configID)
}

// paginate applies limit/offset to a sorted slice.
func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
