package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"netpulse/internal/domain"
	"netpulse/internal/store"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

const alertColumns = `
	id, config_id, status, severity, service_name, message,
	triggered_at, triggered_value, matched_pattern,
	acknowledged_at, acknowledged_by, resolved_at, resolved_by, comment,
	notification_sent, synced_to_index, created_at, updated_at`

// AlertRepository implements store.AlertRepository using PostgreSQL.
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new PostgreSQL-backed alert repository.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// RaiseIfEligible creates a new active alert if and only if the
// configuration has no unresolved alert and is outside its cooldown
// window. Eligibility and insert are one statement: the cooldown check is
// a NOT EXISTS subquery and the one-unresolved invariant is the partial
// unique index, so concurrent raises for the same configuration cannot
// both succeed. A losing insert is "not eligible", not an error.
func (r *AlertRepository) RaiseIfEligible(ctx context.Context, cfg *domain.AlertConfiguration, trig *domain.Trigger, now time.Time) (*domain.Alert, error) {
	alert := domain.NewAlert(cfg, trig)
	alert.ID = uuid.New().String()

	query := `
		INSERT INTO alerts (
			id, config_id, status, severity, service_name, message,
			triggered_at, triggered_value, matched_pattern,
			notification_sent, synced_to_index, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, FALSE, $10, $10
		WHERE NOT EXISTS (
			SELECT 1 FROM alerts
			WHERE config_id = $2 AND triggered_at > $11
		)
	`

	// With no cooldown, the window check degenerates to "no alert later
	// than the trigger itself"; the partial unique index still blocks a
	// second unresolved alert.
	cutoff := alert.TriggeredAt
	if cfg.Cooldown > 0 {
		cutoff = now.UTC().Add(-cfg.Cooldown)
	}

	result, err := r.db.pool.Exec(ctx, query,
		alert.ID,
		alert.ConfigID,
		alert.Status,
		alert.Severity,
		alert.ServiceName,
		alert.Message,
		alert.TriggeredAt,
		alert.TriggeredValue,
		nullableString(alert.MatchedPattern),
		alert.CreatedAt,
		cutoff,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Lost the race to a concurrent raise.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to raise alert: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Cooling down.
		return nil, nil
	}

	return alert, nil
}

// Acknowledge transitions an alert to acknowledged inside a transaction,
// applying the domain state machine against the current row.
func (r *AlertRepository) Acknowledge(ctx context.Context, id, actor string, now time.Time) (*domain.Alert, error) {
	return r.transition(ctx, id, func(alert *domain.Alert) error {
		return alert.Acknowledge(actor, now)
	})
}

// Resolve transitions an alert to resolved. On an already-resolved alert
// only the comment is applied.
func (r *AlertRepository) Resolve(ctx context.Context, id, actor, comment string, now time.Time) (*domain.Alert, error) {
	return r.transition(ctx, id, func(alert *domain.Alert) error {
		return alert.Resolve(actor, comment, now)
	})
}

// transition locks the alert row, applies the state change, and writes the
// result back.
func (r *AlertRepository) transition(ctx context.Context, id string, apply func(*domain.Alert) error) (*domain.Alert, error) {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM alerts WHERE id = $1 FOR UPDATE", alertColumns), id)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	if err := apply(alert); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE alerts SET
			status = $2,
			acknowledged_at = $3,
			acknowledged_by = $4,
			resolved_at = $5,
			resolved_by = $6,
			comment = $7,
			updated_at = $8
		WHERE id = $1
	`,
		alert.ID,
		alert.Status,
		alert.AcknowledgedAt,
		nullableString(alert.AcknowledgedBy),
		alert.ResolvedAt,
		nullableString(alert.ResolvedBy),
		nullableString(alert.Comment),
		alert.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}
	return alert, nil
}

// AutoResolveExpired resolves unresolved alerts whose configuration
// enables auto-resolution and whose age exceeds the configured period.
func (r *AlertRepository) AutoResolveExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE alerts a SET
			status = 'resolved',
			resolved_at = $1,
			resolved_by = $2,
			updated_at = $1
		FROM alert_configurations c
		WHERE a.config_id = c.id
		  AND a.status <> 'resolved'
		  AND c.auto_resolve_seconds > 0
		  AND a.triggered_at < $1 - make_interval(secs => c.auto_resolve_seconds)
	`, now.UTC(), domain.SystemActor)
	if err != nil {
		return 0, fmt.Errorf("failed to auto-resolve alerts: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// MarkNotified records that at least one notification channel succeeded.
func (r *AlertRepository) MarkNotified(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE alerts SET notification_sent = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert notified: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// GetByID retrieves an alert by its database ID.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	row := r.db.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM alerts WHERE id = $1", alertColumns), id)

	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// List retrieves alerts matching the filter criteria, newest first.
func (r *AlertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error) {
	query := fmt.Sprintf("SELECT %s FROM alerts WHERE 1=1", alertColumns)
	args := []interface{}{}
	argNum := 1

	if filter.ConfigID != "" {
		query += fmt.Sprintf(" AND config_id = $%d", argNum)
		args = append(args, filter.ConfigID)
		argNum++
	}
	if filter.ServiceName != "" {
		query += fmt.Sprintf(" AND service_name = $%d", argNum)
		args = append(args, filter.ServiceName)
		argNum++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}

	query += " ORDER BY triggered_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// CountUnresolvedByService summarizes unresolved alerts per service.
func (r *AlertRepository) CountUnresolvedByService(ctx context.Context) (map[string]store.UnresolvedCount, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT service_name,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE severity = 'critical')
		FROM alerts
		WHERE status <> 'resolved'
		GROUP BY service_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count unresolved alerts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]store.UnresolvedCount)
	for rows.Next() {
		var service string
		var c store.UnresolvedCount
		if err := rows.Scan(&service, &c.Total, &c.Critical); err != nil {
			return nil, fmt.Errorf("failed to scan unresolved count: %w", err)
		}
		counts[service] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unresolved counts: %w", err)
	}
	return counts, nil
}

// FetchUnsynced returns up to limit unsynced alerts, oldest first.
func (r *AlertRepository) FetchUnsynced(ctx context.Context, limit int) ([]*domain.Alert, error) {
	rows, err := r.db.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM alerts
		WHERE NOT synced_to_index
		ORDER BY created_at ASC
		LIMIT $1
	`, alertColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsynced alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// MarkSynced flags the given alerts as written to the secondary index.
func (r *AlertRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.pool.Exec(ctx, `
		UPDATE alerts SET synced_to_index = TRUE WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to mark alerts synced: %w", err)
	}
	return nil
}

// scanAlert scans a single row into an Alert.
func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var alert domain.Alert
	var matchedPattern, acknowledgedBy, resolvedBy, comment *string

	err := row.Scan(
		&alert.ID,
		&alert.ConfigID,
		&alert.Status,
		&alert.Severity,
		&alert.ServiceName,
		&alert.Message,
		&alert.TriggeredAt,
		&alert.TriggeredValue,
		&matchedPattern,
		&alert.AcknowledgedAt,
		&acknowledgedBy,
		&alert.ResolvedAt,
		&resolvedBy,
		&comment,
		&alert.NotificationSent,
		&alert.SyncedToIndex,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	alert.MatchedPattern = derefString(matchedPattern)
	alert.AcknowledgedBy = derefString(acknowledgedBy)
	alert.ResolvedBy = derefString(resolvedBy)
	alert.Comment = derefString(comment)

	return &alert, nil
}

// scanAlerts scans multiple rows into a slice of Alerts.
func scanAlerts(rows pgx.Rows) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}

// nullableString returns nil if the string is empty, otherwise a pointer.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// derefString returns the empty string for a nil pointer.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
