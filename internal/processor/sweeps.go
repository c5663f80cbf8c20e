package processor

import (
	"context"
	"log/slog"
	"time"

	"netpulse/internal/domain"
	"netpulse/internal/metrics"
	"netpulse/internal/store"
)

// AutoResolver periodically resolves unresolved alerts that outlived their
// configuration's auto-resolve period. Resolution is attributed to the
// system actor.
type AutoResolver struct {
	alerts store.AlertRepository
	logger *slog.Logger
}

// NewAutoResolver creates an auto-resolve sweeper.
func NewAutoResolver(alerts store.AlertRepository, logger *slog.Logger) *AutoResolver {
	return &AutoResolver{alerts: alerts, logger: logger}
}

// Run executes one sweep.
func (a *AutoResolver) Run(ctx context.Context) error {
	count, err := a.alerts.AutoResolveExpired(ctx, time.Now().UTC())
	if err != nil {
		a.logger.Error("auto-resolve sweep failed", "error", err)
		return err
	}
	if count > 0 {
		metrics.AlertsResolvedTotal.WithLabelValues("system").Add(float64(count))
		a.logger.Info("auto-resolved expired alerts", "count", count)
	}
	return nil
}

// StatusSweeper recomputes the per-service health rollup from unresolved
// alert counts. A service is down when it has an unresolved critical
// alert, degraded when it has any unresolved alert, healthy otherwise.
type StatusSweeper struct {
	alerts   store.AlertRepository
	statuses store.StatusRepository
	logger   *slog.Logger
}

// NewStatusSweeper creates a status rollup sweeper.
func NewStatusSweeper(alerts store.AlertRepository, statuses store.StatusRepository, logger *slog.Logger) *StatusSweeper {
	return &StatusSweeper{alerts: alerts, statuses: statuses, logger: logger}
}

// Run executes one rollup sweep. Services with an existing status row but
// no remaining unresolved alerts are flipped back to healthy.
func (s *StatusSweeper) Run(ctx context.Context) error {
	counts, err := s.alerts.CountUnresolvedByService(ctx)
	if err != nil {
		s.logger.Error("status sweep failed to count alerts", "error", err)
		return err
	}

	known, err := s.statuses.ListServiceNames(ctx)
	if err != nil {
		s.logger.Error("status sweep failed to list services", "error", err)
		return err
	}

	services := make(map[string]struct{}, len(counts)+len(known))
	for name := range counts {
		services[name] = struct{}{}
	}
	for _, name := range known {
		services[name] = struct{}{}
	}

	now := time.Now().UTC()
	for name := range services {
		c := counts[name]
		status := &domain.ServiceStatus{
			ServiceName:  name,
			Status:       healthFor(c),
			ActiveAlerts: c.Total,
			CheckedAt:    now,
		}
		if err := s.statuses.Upsert(ctx, status); err != nil {
			s.logger.Error("failed to upsert service status",
				"service", name,
				"error", err)
			return err
		}
	}

	s.logger.Debug("status sweep complete", "services", len(services))
	return nil
}

func healthFor(c store.UnresolvedCount) domain.ServiceHealth {
	switch {
	case c.Critical > 0:
		return domain.ServiceDown
	case c.Total > 0:
		return domain.ServiceDegraded
	default:
		return domain.ServiceHealthy
	}
}
