package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"netpulse/internal/domain"
)

const configColumns = `
	id, name, service_name, condition_type, metric_type, threshold,
	comparator, log_level, pattern, is_regex, severity, enabled,
	cooldown_seconds, auto_resolve_seconds, channel_ids,
	created_at, updated_at`

// ConfigRepository implements store.ConfigRepository using PostgreSQL.
type ConfigRepository struct {
	db *DB
}

// NewConfigRepository creates a new PostgreSQL-backed config repository.
func NewConfigRepository(db *DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Create stores a new configuration.
func (r *ConfigRepository) Create(ctx context.Context, cfg *domain.AlertConfiguration) error {
	channelIDs, err := json.Marshal(cfg.ChannelIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal channel ids: %w", err)
	}

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO alert_configurations (
			id, name, service_name, condition_type, metric_type, threshold,
			comparator, log_level, pattern, is_regex, severity, enabled,
			cooldown_seconds, auto_resolve_seconds, channel_ids,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		cfg.ID,
		cfg.Name,
		nullableString(cfg.ServiceName),
		cfg.ConditionType,
		nullableString(cfg.MetricType),
		cfg.Threshold,
		nullableString(string(cfg.Comparator)),
		nullableString(cfg.LogLevel),
		nullableString(cfg.Pattern),
		cfg.IsRegex,
		cfg.Severity,
		cfg.Enabled,
		int64(cfg.Cooldown/time.Second),
		int64(cfg.AutoResolveAfter/time.Second),
		channelIDs,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}
	return nil
}

// Update modifies an existing configuration.
func (r *ConfigRepository) Update(ctx context.Context, cfg *domain.AlertConfiguration) error {
	channelIDs, err := json.Marshal(cfg.ChannelIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal channel ids: %w", err)
	}

	result, err := r.db.pool.Exec(ctx, `
		UPDATE alert_configurations SET
			name = $2,
			service_name = $3,
			condition_type = $4,
			metric_type = $5,
			threshold = $6,
			comparator = $7,
			log_level = $8,
			pattern = $9,
			is_regex = $10,
			severity = $11,
			enabled = $12,
			cooldown_seconds = $13,
			auto_resolve_seconds = $14,
			channel_ids = $15,
			updated_at = $16
		WHERE id = $1
	`,
		cfg.ID,
		cfg.Name,
		nullableString(cfg.ServiceName),
		cfg.ConditionType,
		nullableString(cfg.MetricType),
		cfg.Threshold,
		nullableString(string(cfg.Comparator)),
		nullableString(cfg.LogLevel),
		nullableString(cfg.Pattern),
		cfg.IsRegex,
		cfg.Severity,
		cfg.Enabled,
		int64(cfg.Cooldown/time.Second),
		int64(cfg.AutoResolveAfter/time.Second),
		channelIDs,
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}

// Delete removes a configuration. The alerts foreign key cascades, so the
// configuration's history goes with it.
func (r *ConfigRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx,
		"DELETE FROM alert_configurations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}

// GetByID retrieves a configuration by its ID.
func (r *ConfigRepository) GetByID(ctx context.Context, id string) (*domain.AlertConfiguration, error) {
	row := r.db.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM alert_configurations WHERE id = $1", configColumns), id)

	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	return cfg, nil
}

// List retrieves configurations matching the filter.
func (r *ConfigRepository) List(ctx context.Context, filter domain.ConfigFilter) ([]*domain.AlertConfiguration, error) {
	query := fmt.Sprintf("SELECT %s FROM alert_configurations WHERE 1=1", configColumns)
	args := []interface{}{}
	argNum := 1

	if filter.ServiceName != "" {
		query += fmt.Sprintf(" AND service_name = $%d", argNum)
		args = append(args, filter.ServiceName)
		argNum++
	}
	if filter.Enabled != nil {
		query += fmt.Sprintf(" AND enabled = $%d", argNum)
		args = append(args, *filter.Enabled)
		argNum++
	}

	query += " ORDER BY name ASC"

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
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	return scanConfigs(rows)
}

// ListEnabledForService retrieves the enabled configurations whose service
// filter matches the given service, including unfiltered configurations.
func (r *ConfigRepository) ListEnabledForService(ctx context.Context, serviceName string) ([]*domain.AlertConfiguration, error) {
	rows, err := r.db.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM alert_configurations
		WHERE enabled AND (service_name IS NULL OR service_name = $1)
		ORDER BY name ASC
	`, configColumns), serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled configurations: %w", err)
	}
	defer rows.Close()

	return scanConfigs(rows)
}

// scanConfig scans a single row into an AlertConfiguration.
func scanConfig(row pgx.Row) (*domain.AlertConfiguration, error) {
	var cfg domain.AlertConfiguration
	var serviceName, metricType, comparator, logLevel, pattern *string
	var cooldownSeconds, autoResolveSeconds int64
	var channelIDs []byte

	err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&serviceName,
		&cfg.ConditionType,
		&metricType,
		&cfg.Threshold,
		&comparator,
		&logLevel,
		&pattern,
		&cfg.IsRegex,
		&cfg.Severity,
		&cfg.Enabled,
		&cooldownSeconds,
		&autoResolveSeconds,
		&channelIDs,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.ServiceName = derefString(serviceName)
	cfg.MetricType = derefString(metricType)
	cfg.Comparator = domain.Comparator(derefString(comparator))
	cfg.LogLevel = derefString(logLevel)
	cfg.Pattern = derefString(pattern)
	cfg.Cooldown = time.Duration(cooldownSeconds) * time.Second
	cfg.AutoResolveAfter = time.Duration(autoResolveSeconds) * time.Second

	if len(channelIDs) > 0 {
		if err := json.Unmarshal(channelIDs, &cfg.ChannelIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal channel ids: %w", err)
		}
	}

	return &cfg, nil
}

// scanConfigs scans multiple rows into a slice of configurations.
func scanConfigs(rows pgx.Rows) ([]*domain.AlertConfiguration, error) {
	var configs []*domain.AlertConfiguration
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating configurations: %w", err)
	}
	return configs, nil
}
