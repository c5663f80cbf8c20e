// Package store defines the persistence interfaces for NetPulse.
// PostgreSQL implementations back production; in-memory implementations
// back tests and local development.
package store

import (
	"context"
	"time"

	"netpulse/internal/domain"
)

// ConfigRepository defines the interface for alert configuration storage.
type ConfigRepository interface {
	// Create stores a new configuration.
	Create(ctx context.Context, cfg *domain.AlertConfiguration) error

	// Update modifies an existing configuration.
	Update(ctx context.Context, cfg *domain.AlertConfiguration) error

	// Delete removes a configuration. Its alert history is removed by
	// cascade; this is the only path that physically deletes alerts.
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a configuration by its ID.
	GetByID(ctx context.Context, id string) (*domain.AlertConfiguration, error)

	// List retrieves configurations matching the filter.
	List(ctx context.Context, filter domain.ConfigFilter) ([]*domain.AlertConfiguration, error)

	// ListEnabledForService retrieves the enabled configurations whose
	// service filter matches the given service (including configurations
	// with no service filter). This is the evaluation path's read.
	ListEnabledForService(ctx context.Context, serviceName string) ([]*domain.AlertConfiguration, error)
}

// ChannelRepository defines the interface for notification channel storage.
type ChannelRepository interface {
	Create(ctx context.Context, ch *domain.NotificationChannel) error
	Update(ctx context.Context, ch *domain.NotificationChannel) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error)
	List(ctx context.Context) ([]*domain.NotificationChannel, error)

	// GetByIDs retrieves channels preserving the order of ids. Unknown
	// ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.NotificationChannel, error)
}

// AlertRepository defines the interface for alert history storage and the
// atomic raise operation.
type AlertRepository interface {
	// RaiseIfEligible creates a new active alert for the configuration if
	// and only if (a) no unresolved alert currently exists for it and
	// (b) no alert was triggered within the configuration's cooldown
	// window. The check and the insert are a single atomic operation with
	// respect to concurrent raises for the same configuration: the store
	// enforces the one-unresolved-alert invariant, not the caller.
	//
	// Returns (nil, nil) when not eligible. A concurrent insert losing
	// the race is "not eligible", never an error.
	RaiseIfEligible(ctx context.Context, cfg *domain.AlertConfiguration, trig *domain.Trigger, now time.Time) (*domain.Alert, error)

	// Acknowledge transitions an alert to acknowledged.
	Acknowledge(ctx context.Context, id, actor string, now time.Time) (*domain.Alert, error)

	// Resolve transitions an alert to resolved. On an already-resolved
	// alert only the comment is applied.
	Resolve(ctx context.Context, id, actor, comment string, now time.Time) (*domain.Alert, error)

	// AutoResolveExpired resolves unresolved alerts whose configuration
	// enables auto-resolution and whose age exceeds the configured
	// period, attributing the resolution to the system actor. Returns
	// the number of alerts resolved.
	AutoResolveExpired(ctx context.Context, now time.Time) (int, error)

	// MarkNotified sets the alert's notification flag after at least one
	// channel accepted delivery.
	MarkNotified(ctx context.Context, id string) error

	// GetByID retrieves an alert by its ID.
	GetByID(ctx context.Context, id string) (*domain.Alert, error)

	// List retrieves alerts matching the filter, newest first.
	List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error)

	// CountUnresolvedByService returns, per service name, the number of
	// unresolved alerts and whether any of them is critical. Input for
	// the service-status rollup.
	CountUnresolvedByService(ctx context.Context) (map[string]UnresolvedCount, error)

	// FetchUnsynced returns up to limit alerts with syncedToIndex=false,
	// oldest first.
	FetchUnsynced(ctx context.Context, limit int) ([]*domain.Alert, error)

	// MarkSynced flags the given alerts as written to the secondary index.
	MarkSynced(ctx context.Context, ids []string) error
}

// UnresolvedCount summarizes a service's unresolved alerts.
type UnresolvedCount struct {
	Total    int
	Critical int
}

// LogRepository defines the interface for service log rows.
type LogRepository interface {
	Insert(ctx context.Context, l *domain.ServiceLog) error
	FetchUnsynced(ctx context.Context, limit int) ([]*domain.ServiceLog, error)
	MarkSynced(ctx context.Context, ids []string) error
}

// MetricRepository defines the interface for system metric rows.
type MetricRepository interface {
	Insert(ctx context.Context, m *domain.SystemMetric) error
	FetchUnsynced(ctx context.Context, limit int) ([]*domain.SystemMetric, error)
	MarkSynced(ctx context.Context, ids []string) error
}

// StatusRepository defines the interface for service status rollups.
type StatusRepository interface {
	// Upsert inserts or replaces the status row for a service and resets
	// its sync flag, since the content changed.
	Upsert(ctx context.Context, s *domain.ServiceStatus) error

	// ListServiceNames returns every service that has a status row. The
	// rollup sweep uses this to flip services back to healthy once their
	// alerts resolve.
	ListServiceNames(ctx context.Context) ([]string, error)

	FetchUnsynced(ctx context.Context, limit int) ([]*domain.ServiceStatus, error)
	MarkSynced(ctx context.Context, ids []string) error
}

// CooldownCache is an advisory fast-path in front of the alert store's
// conditional insert. A hit means the configuration is certainly cooling
// down and the store round-trip can be skipped; a miss proves nothing.
// The authoritative cooldown decision always stays with
// AlertRepository.RaiseIfEligible.
type CooldownCache interface {
	// IsCoolingDown reports whether a cooldown marker exists for the
	// configuration. Errors are advisory too: callers treat them as a
	// miss.
	IsCoolingDown(ctx context.Context, configID string) (bool, error)

	// SetCooldown places a marker that expires after ttl.
	SetCooldown(ctx context.Context, configID string, ttl time.Duration) error

	// Close releases any resources.
	Close() error
}
