package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"netpulse/internal/domain"
)

// LogRepository implements store.LogRepository using PostgreSQL.
type LogRepository struct {
	db *DB
}

// NewLogRepository creates a new PostgreSQL-backed log repository.
func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db}
}

// Insert stores a new log row, unsynced.
func (r *LogRepository) Insert(ctx context.Context, l *domain.ServiceLog) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO service_logs (id, service_name, level, message, timestamp, synced_to_index, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, l.ID, l.ServiceName, l.Level, l.Message, l.Timestamp, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert service log: %w", err)
	}
	return nil
}

// FetchUnsynced returns up to limit unsynced log rows, oldest first.
func (r *LogRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.ServiceLog, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, service_name, level, message, timestamp, synced_to_index, created_at
		FROM service_logs
		WHERE NOT synced_to_index
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsynced logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.ServiceLog
	for rows.Next() {
		var l domain.ServiceLog
		if err := rows.Scan(&l.ID, &l.ServiceName, &l.Level, &l.Message, &l.Timestamp, &l.SyncedToIndex, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service logs: %w", err)
	}
	return logs, nil
}

// MarkSynced flags log rows as written to the secondary index.
func (r *LogRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.pool.Exec(ctx,
		"UPDATE service_logs SET synced_to_index = TRUE WHERE id = ANY($1)", ids)
	if err != nil {
		return fmt.Errorf("failed to mark logs synced: %w", err)
	}
	return nil
}

// MetricRepository implements store.MetricRepository using PostgreSQL.
type MetricRepository struct {
	db *DB
}

// NewMetricRepository creates a new PostgreSQL-backed metric repository.
func NewMetricRepository(db *DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// Insert stores a new metric row, unsynced.
func (r *MetricRepository) Insert(ctx context.Context, m *domain.SystemMetric) error {
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal metric tags: %w", err)
	}

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO system_metrics (id, service_name, host_name, metric_type, value, unit, tags, timestamp, synced_to_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
	`, m.ID, m.ServiceName, nullableString(m.HostName), m.MetricType, m.Value, nullableString(m.Unit), tags, m.Timestamp, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert system metric: %w", err)
	}
	return nil
}

// FetchUnsynced returns up to limit unsynced metric rows, oldest first.
func (r *MetricRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.SystemMetric, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, service_name, host_name, metric_type, value, unit, tags, timestamp, synced_to_index, created_at
		FROM system_metrics
		WHERE NOT synced_to_index
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsynced metrics: %w", err)
	}
	defer rows.Close()

	var metrics []*domain.SystemMetric
	for rows.Next() {
		var m domain.SystemMetric
		var hostName, unit *string
		var tags []byte
		if err := rows.Scan(&m.ID, &m.ServiceName, &hostName, &m.MetricType, &m.Value, &unit, &tags, &m.Timestamp, &m.SyncedToIndex, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan system metric: %w", err)
		}
		m.HostName = derefString(hostName)
		m.Unit = derefString(unit)
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &m.Tags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metric tags: %w", err)
			}
		}
		metrics = append(metrics, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating system metrics: %w", err)
	}
	return metrics, nil
}

// MarkSynced flags metric rows as written to the secondary index.
func (r *MetricRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.pool.Exec(ctx,
		"UPDATE system_metrics SET synced_to_index = TRUE WHERE id = ANY($1)", ids)
	if err != nil {
		return fmt.Errorf("failed to mark metrics synced: %w", err)
	}
	return nil
}

// StatusRepository implements store.StatusRepository using PostgreSQL.
type StatusRepository struct {
	db *DB
}

// NewStatusRepository creates a new PostgreSQL-backed status repository.
func NewStatusRepository(db *DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// Upsert inserts or replaces a service's status row. Any content change
// resets the sync flag so the row is re-indexed.
func (r *StatusRepository) Upsert(ctx context.Context, s *domain.ServiceStatus) error {
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO service_status (id, service_name, status, active_alerts, checked_at, synced_to_index)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (service_name) DO UPDATE SET
			status = EXCLUDED.status,
			active_alerts = EXCLUDED.active_alerts,
			checked_at = EXCLUDED.checked_at,
			synced_to_index = FALSE
	`, id, s.ServiceName, s.Status, s.ActiveAlerts, s.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert service status: %w", err)
	}
	return nil
}

// ListServiceNames returns every service with a status row, sorted.
func (r *StatusRepository) ListServiceNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.pool.Query(ctx,
		"SELECT service_name FROM service_status ORDER BY service_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list status services: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan service name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service names: %w", err)
	}
	return names, nil
}

// FetchUnsynced returns up to limit unsynced status rows, oldest first.
func (r *StatusRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.ServiceStatus, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, service_name, status, active_alerts, checked_at, synced_to_index
		FROM service_status
		WHERE NOT synced_to_index
		ORDER BY checked_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsynced statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*domain.ServiceStatus
	for rows.Next() {
		var s domain.ServiceStatus
		if err := rows.Scan(&s.ID, &s.ServiceName, &s.Status, &s.ActiveAlerts, &s.CheckedAt, &s.SyncedToIndex); err != nil {
			return nil, fmt.Errorf("failed to scan service status: %w", err)
		}
		statuses = append(statuses, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service statuses: %w", err)
	}
	return statuses, nil
}

// MarkSynced flags status rows as written to the secondary index.
func (r *StatusRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.pool.Exec(ctx,
		"UPDATE service_status SET synced_to_index = TRUE WHERE id = ANY($1)", ids)
	if err != nil {
		return fmt.Errorf("failed to mark statuses synced: %w", err)
	}
	return nil
}
