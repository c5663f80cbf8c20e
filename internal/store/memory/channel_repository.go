package memory

import (
	"context"
	"sort"
	"sync"

	"netpulse/internal/domain"
)

// ChannelRepository is an in-memory implementation of store.ChannelRepository.
type ChannelRepository struct {
	mu       sync.RWMutex
	channels map[string]*domain.NotificationChannel
}

// NewChannelRepository creates a new in-memory channel repository.
func NewChannelRepository() *ChannelRepository {
	return &ChannelRepository{
		channels: make(map[string]*domain.NotificationChannel),
	}
}

// Create stores a new channel.
func (r *ChannelRepository) Create(ctx context.Context, ch *domain.NotificationChannel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *ch
	r.channels[ch.ID] = &stored
	return nil
}

// Update modifies an existing channel.
func (r *ChannelRepository) Update(ctx context.Context, ch *domain.NotificationChannel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[ch.ID]; !exists {
		return domain.ErrChannelNotFound
	}
	stored := *ch
	r.channels[ch.ID] = &stored
	return nil
}

// Delete removes a channel.
func (r *ChannelRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[id]; !exists {
		return domain.ErrChannelNotFound
	}
	delete(r.channels, id)
	return nil
}

// GetByID retrieves a channel by its ID.
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, exists := r.channels[id]
	if !exists {
		return nil, domain.ErrChannelNotFound
	}
	result := *ch
	return &result, nil
}

// List retrieves all channels sorted by name.
func (r *ChannelRepository) List(ctx context.Context) ([]*domain.NotificationChannel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]*domain.NotificationChannel, 0, len(r.channels))
	for _, ch := range r.channels {
		result := *ch
		channels = append(channels, &result)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Name < channels[j].Name
	})
	return channels, nil
}

// GetByIDs retrieves channels preserving the order of ids, skipping
// unknown ids.
func (r *ChannelRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.NotificationChannel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]*domain.NotificationChannel, 0, len(ids))
	for _, id := range ids {
		if ch, exists := r.channels[id]; exists {
			result := *ch
			channels = append(channels, &result)
		}
	}
	return channels, nil
}
