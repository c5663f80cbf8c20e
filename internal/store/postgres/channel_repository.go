package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"netpulse/internal/domain"
)

// ChannelRepository implements store.ChannelRepository using PostgreSQL.
type ChannelRepository struct {
	db *DB
}

// NewChannelRepository creates a new PostgreSQL-backed channel repository.
func NewChannelRepository(db *DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create stores a new channel.
func (r *ChannelRepository) Create(ctx context.Context, ch *domain.NotificationChannel) error {
	settings, err := json.Marshal(ch.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal channel settings: %w", err)
	}

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO notification_channels (id, name, type, enabled, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ch.ID, ch.Name, ch.Type, ch.Enabled, settings, ch.CreatedAt, ch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

// Update modifies an existing channel.
func (r *ChannelRepository) Update(ctx context.Context, ch *domain.NotificationChannel) error {
	settings, err := json.Marshal(ch.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal channel settings: %w", err)
	}

	result, err := r.db.pool.Exec(ctx, `
		UPDATE notification_channels SET
			name = $2, type = $3, enabled = $4, settings = $5, updated_at = $6
		WHERE id = $1
	`, ch.ID, ch.Name, ch.Type, ch.Enabled, settings, ch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrChannelNotFound
	}
	return nil
}

// Delete removes a channel.
func (r *ChannelRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx,
		"DELETE FROM notification_channels WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrChannelNotFound
	}
	return nil
}

// GetByID retrieves a channel by its ID.
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, name, type, enabled, settings, created_at, updated_at
		FROM notification_channels WHERE id = $1
	`, id)

	ch, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return ch, nil
}

// List retrieves all channels sorted by name.
func (r *ChannelRepository) List(ctx context.Context) ([]*domain.NotificationChannel, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, type, enabled, settings, created_at, updated_at
		FROM notification_channels ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	return scanChannels(rows)
}

// GetByIDs retrieves channels preserving the order of ids. Unknown ids are
// skipped.
func (r *ChannelRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.NotificationChannel, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, type, enabled, settings, created_at, updated_at
		FROM notification_channels WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get channels: %w", err)
	}
	defer rows.Close()

	fetched, err := scanChannels(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.NotificationChannel, len(fetched))
	for _, ch := range fetched {
		byID[ch.ID] = ch
	}

	ordered := make([]*domain.NotificationChannel, 0, len(ids))
	for _, id := range ids {
		if ch, ok := byID[id]; ok {
			ordered = append(ordered, ch)
		}
	}
	return ordered, nil
}

// scanChannel scans a single row into a NotificationChannel.
func scanChannel(row pgx.Row) (*domain.NotificationChannel, error) {
	var ch domain.NotificationChannel
	var settings []byte

	err := row.Scan(&ch.ID, &ch.Name, &ch.Type, &ch.Enabled, &settings, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &ch.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal channel settings: %w", err)
		}
	}
	return &ch, nil
}

// scanChannels scans multiple rows into a slice of channels.
func scanChannels(rows pgx.Rows) ([]*domain.NotificationChannel, error) {
	var channels []*domain.NotificationChannel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}
	return channels, nil
}
