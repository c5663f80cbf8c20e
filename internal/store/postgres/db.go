// Package postgres provides PostgreSQL-based implementations of the store
// interfaces.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"netpulse/internal/config"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, cfg *config.PostgresConfig) (*DB, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
		cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxOpenConns
	poolConfig.MinConns = cfg.MaxIdleConns
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Pool returns the underlying connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// RunMigrations creates the required database tables.
//
// The partial unique index on alerts is what makes RaiseIfEligible safe:
// two concurrent inserts for the same configuration cannot both commit an
// unresolved row, no matter which process or replica they run on.
func (db *DB) RunMigrations(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS alert_configurations (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			service_name VARCHAR(255),
			condition_type VARCHAR(20) NOT NULL,
			metric_type VARCHAR(100),
			threshold DOUBLE PRECISION DEFAULT 0,
			comparator VARCHAR(10),
			log_level VARCHAR(20),
			pattern TEXT,
			is_regex BOOLEAN DEFAULT FALSE,
			severity VARCHAR(20) NOT NULL,
			enabled BOOLEAN DEFAULT TRUE,
			cooldown_seconds BIGINT DEFAULT 0,
			auto_resolve_seconds BIGINT DEFAULT 0,
			channel_ids JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_configs_service ON alert_configurations(service_name) WHERE enabled;

		CREATE TABLE IF NOT EXISTS notification_channels (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(20) NOT NULL,
			enabled BOOLEAN DEFAULT TRUE,
			settings JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id VARCHAR(36) PRIMARY KEY,
			config_id VARCHAR(36) NOT NULL REFERENCES alert_configurations(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL,
			severity VARCHAR(20) NOT NULL,
			service_name VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			triggered_at TIMESTAMP WITH TIME ZONE NOT NULL,
			triggered_value DOUBLE PRECISION,
			matched_pattern TEXT,
			acknowledged_at TIMESTAMP WITH TIME ZONE,
			acknowledged_by VARCHAR(255),
			resolved_at TIMESTAMP WITH TIME ZONE,
			resolved_by VARCHAR(255),
			comment TEXT,
			notification_sent BOOLEAN DEFAULT FALSE,
			synced_to_index BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS uniq_alerts_unresolved
			ON alerts(config_id) WHERE status <> 'resolved';
		CREATE INDEX IF NOT EXISTS idx_alerts_config ON alerts(config_id);
		CREATE INDEX IF NOT EXISTS idx_alerts_service ON alerts(service_name);
		CREATE INDEX IF NOT EXISTS idx_alerts_unsynced ON alerts(created_at) WHERE NOT synced_to_index;

		CREATE TABLE IF NOT EXISTS service_logs (
			id VARCHAR(36) PRIMARY KEY,
			service_name VARCHAR(255) NOT NULL,
			level VARCHAR(20) NOT NULL,
			message TEXT NOT NULL,
			timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
			synced_to_index BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_logs_unsynced ON service_logs(created_at) WHERE NOT synced_to_index;

		CREATE TABLE IF NOT EXISTS system_metrics (
			id VARCHAR(36) PRIMARY KEY,
			service_name VARCHAR(255) NOT NULL,
			host_name VARCHAR(255),
			metric_type VARCHAR(100) NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			unit VARCHAR(50),
			tags JSONB NOT NULL DEFAULT '{}',
			timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
			synced_to_index BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_metrics_unsynced ON system_metrics(created_at) WHERE NOT synced_to_index;

		CREATE TABLE IF NOT EXISTS service_status (
			id VARCHAR(36) PRIMARY KEY,
			service_name VARCHAR(255) UNIQUE NOT NULL,
			status VARCHAR(20) NOT NULL,
			active_alerts INTEGER DEFAULT 0,
			checked_at TIMESTAMP WITH TIME ZONE NOT NULL,
			synced_to_index BOOLEAN DEFAULT FALSE
		);
	`

	_, err := db.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
