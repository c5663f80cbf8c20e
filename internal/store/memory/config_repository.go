package memory

import (
	"context"
	"sort"
	"sync"

	"netpulse/internal/domain"
)

// ConfigRepository is an in-memory implementation of store.ConfigRepository.
type ConfigRepository struct {
	mu      sync.RWMutex
	configs map[string]*domain.AlertConfiguration

	// alerts, when set, receives cascade deletes the way the database
	// foreign key does.
	alerts *AlertRepository
}

// NewConfigRepository creates a new in-memory configuration repository.
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{
		configs: make(map[string]*domain.AlertConfiguration),
	}
}

// AttachAlerts wires the alert repository for cascade deletes.
func (r *ConfigRepository) AttachAlerts(alerts *AlertRepository) {
	r.alerts = alerts
}

// Create stores a new configuration.
func (r *ConfigRepository) Create(ctx context.Context, cfg *domain.AlertConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *cfg
	r.configs[cfg.ID] = &stored
	return nil
}

// Update modifies an existing configuration.
func (r *ConfigRepository) Update(ctx context.Context, cfg *domain.AlertConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[cfg.ID]; !exists {
		return domain.ErrConfigNotFound
	}
	stored := *cfg
	r.configs[cfg.ID] = &stored
	return nil
}

// Delete removes a configuration and cascades to its alert history.
func (r *ConfigRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, exists := r.configs[id]; !exists {
		r.mu.Unlock()
		return domain.ErrConfigNotFound
	}
	delete(r.configs, id)
	r.mu.Unlock()

	if r.alerts != nil {
		r.alerts.DeleteByConfig(id)
	}
	return nil
}

// GetByID retrieves a configuration by its ID.
func (r *ConfigRepository) GetByID(ctx context.Context, id string) (*domain.AlertConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.configs[id]
	if !exists {
		return nil, domain.ErrConfigNotFound
	}
	result := *cfg
	return &result, nil
}

// List retrieves configurations matching the filter, sorted by name.
func (r *ConfigRepository) List(ctx context.Context, filter domain.ConfigFilter) ([]*domain.AlertConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var configs []*domain.AlertConfiguration
	for _, cfg := range r.configs {
		if filter.ServiceName != "" && cfg.ServiceName != filter.ServiceName {
			continue
		}
		if filter.Enabled != nil && cfg.Enabled != *filter.Enabled {
			continue
		}
		result := *cfg
		configs = append(configs, &result)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})

	return paginate(configs, filter.Limit, filter.Offset), nil
}

// ListEnabledForService retrieves enabled configurations applicable to the
// service, including configurations with no service filter.
func (r *ConfigRepository) ListEnabledForService(ctx context.Context, serviceName string) ([]*domain.AlertConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var configs []*domain.AlertConfiguration
	for _, cfg := range r.configs {
		if !cfg.Enabled {
			continue
		}
		if cfg.ServiceName != "" && cfg.ServiceName != serviceName {
			continue
		}
		result := *cfg
		configs = append(configs, &result)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}
