// Package processor implements the core evaluation pipeline. It consumes
// event envelopes from the message queue, persists them, evaluates them
// against the enabled alert configurations and raises alerts for matches.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"netpulse/internal/domain"
	"netpulse/internal/evaluator"
	"netpulse/internal/metrics"
	"netpulse/internal/queue"
	"netpulse/internal/store"
)

// AlertNotifier delivers a raised alert to its configured channels.
type AlertNotifier interface {
	Dispatch(ctx context.Context, alert *domain.Alert, cfg *domain.AlertConfiguration) int
}

// Service processes events from the queue. For each envelope it:
// - persists the event as an unsynced row for the index sync daemon
// - evaluates it against the enabled configurations for its service
// - raises an alert per match, subject to cooldown and the one active
//   alert per configuration rule
// - hands raised alerts to the notification dispatcher
type Service struct {
	consumer   queue.Consumer
	configRepo store.ConfigRepository
	alertRepo  store.AlertRepository
	logRepo    store.LogRepository
	metricRepo store.MetricRepository
	cooldowns  store.CooldownCache
	eval       *evaluator.Evaluator
	notifier   AlertNotifier
	logger     *slog.Logger
}

// NewService creates a new processor service.
func NewService(
	consumer queue.Consumer,
	configRepo store.ConfigRepository,
	alertRepo store.AlertRepository,
	logRepo store.LogRepository,
	metricRepo store.MetricRepository,
	cooldowns store.CooldownCache,
	eval *evaluator.Evaluator,
	notifier AlertNotifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		consumer:   consumer,
		configRepo: configRepo,
		alertRepo:  alertRepo,
		logRepo:    logRepo,
		metricRepo: metricRepo,
		cooldowns:  cooldowns,
		eval:       eval,
		notifier:   notifier,
		logger:     logger,
	}
}

// Start begins consuming events from the queue. This blocks until the
// context is canceled.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("starting processor service")
	return s.consumer.Start(ctx, s.HandleMessage)
}

// HandleMessage processes one message from the queue. Malformed messages
// are logged and acknowledged; store errors propagate so the message is
// redelivered.
func (s *Service) HandleMessage(ctx context.Context, msg *queue.Message) error {
	start := time.Now()

	var env domain.EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		s.logger.Error("failed to deserialize event envelope", "error", err)
		metrics.EventsProcessedTotal.WithLabelValues("unknown", "malformed").Inc()
		return nil
	}
	if err := env.Validate(); err != nil {
		s.logger.Error("invalid event envelope", "error", err, "kind", env.Kind)
		metrics.EventsProcessedTotal.WithLabelValues(string(env.Kind), "malformed").Inc()
		return nil
	}

	var err error
	switch env.Kind {
	case domain.EventKindMetric:
		err = s.processMetric(ctx, env.Metric)
	case domain.EventKindLog:
		err = s.processLog(ctx, env.Log)
	}
	if err != nil {
		metrics.EventsProcessedTotal.WithLabelValues(string(env.Kind), "error").Inc()
		return err
	}

	metrics.EventsProcessedTotal.WithLabelValues(string(env.Kind), "ok").Inc()
	metrics.EventProcessingLatency.Observe(time.Since(start).Seconds())
	return nil
}

func (s *Service) processMetric(ctx context.Context, ev *domain.MetricEvent) error {
	row := domain.NewSystemMetric(uuid.New().String(), ev)
	if err := s.metricRepo.Insert(ctx, row); err != nil {
		return err
	}

	configs, err := s.configRepo.ListEnabledForService(ctx, ev.ServiceName)
	if err != nil {
		return err
	}

	for _, m := range s.eval.EvaluateMetric(configs, ev) {
		if err := s.raise(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) processLog(ctx context.Context, ev *domain.LogEvent) error {
	row := domain.NewServiceLog(uuid.New().String(), ev)
	if err := s.logRepo.Insert(ctx, row); err != nil {
		return err
	}

	configs, err := s.configRepo.ListEnabledForService(ctx, ev.ServiceName)
	if err != nil {
		return err
	}

	for _, m := range s.eval.EvaluateLog(configs, ev) {
		if err := s.raise(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// raise turns a match into an alert unless the configuration is cooling
// down or already has an unresolved alert. The cache check is a fast path
// only; the store enforces eligibility atomically at insert time.
func (s *Service) raise(ctx context.Context, m evaluator.Match) error {
	cfg := m.Config

	if cfg.Cooldown > 0 {
		cooling, err := s.cooldowns.IsCoolingDown(ctx, cfg.ID)
		if err != nil {
			// Cache trouble never blocks alerting.
			s.logger.Warn("cooldown cache check failed", "config_id", cfg.ID, "error", err)
		} else if cooling {
			metrics.AlertsSuppressedTotal.WithLabelValues("cooldown").Inc()
			s.logger.Debug("trigger suppressed by cooldown", "config_id", cfg.ID)
			return nil
		}
	}

	alert, err := s.alertRepo.RaiseIfEligible(ctx, cfg, m.Trigger, time.Now().UTC())
	if err != nil {
		return err
	}
	if alert == nil {
		metrics.AlertsSuppressedTotal.WithLabelValues("duplicate").Inc()
		s.logger.Debug("trigger suppressed, configuration not eligible", "config_id", cfg.ID)
		return nil
	}

	metrics.AlertsRaisedTotal.WithLabelValues(string(alert.Severity)).Inc()
	s.logger.Info("alert raised",
		"alert_id", alert.ID,
		"config_id", cfg.ID,
		"service", alert.ServiceName,
		"severity", alert.Severity)

	if cfg.Cooldown > 0 {
		if err := s.cooldowns.SetCooldown(ctx, cfg.ID, cfg.Cooldown); err != nil {
			s.logger.Warn("failed to set cooldown marker", "config_id", cfg.ID, "error", err)
		}
	}

	// Delivery must not hold up the consume loop, and must survive the
	// message context.
	go s.notifier.Dispatch(context.WithoutCancel(ctx), alert, cfg)

	return nil
}
