// Package ingest accepts event envelopes from the API and publishes them
// to the message queue for asynchronous processing.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"netpulse/internal/domain"
	"netpulse/internal/metrics"
	"netpulse/internal/queue"
)

// ErrPublishFailed is returned when the queue rejects an envelope.
var ErrPublishFailed = errors.New("failed to publish event to queue")

// Service publishes validated event envelopes to the queue. Envelopes are
// keyed by service name so events for one service stay ordered.
type Service struct {
	producer queue.Producer
	logger   *slog.Logger
}

// NewService creates a new ingest service.
func NewService(producer queue.Producer, logger *slog.Logger) *Service {
	return &Service{
		producer: producer,
		logger:   logger,
	}
}

// Publish validates the envelope and hands it to the queue.
func (s *Service) Publish(ctx context.Context, env *domain.EventEnvelope) error {
	metrics.EventsReceivedTotal.WithLabelValues(string(env.Kind)).Inc()

	if err := env.Validate(); err != nil {
		return err
	}
	if env.ReceivedAt.IsZero() {
		env.ReceivedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to serialize event envelope: %w", err)
	}

	msg := &queue.Message{
		Key:   []byte(env.ServiceName()),
		Value: payload,
		Headers: map[string]string{
			"kind": string(env.Kind),
		},
	}

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.logger.Error("failed to publish event",
			"kind", env.Kind,
			"service", env.ServiceName(),
			"error", err)
		return ErrPublishFailed
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(env.Kind)).Inc()
	s.logger.Debug("event published to queue",
		"kind", env.Kind,
		"service", env.ServiceName())

	return nil
}
