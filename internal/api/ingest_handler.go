package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"netpulse/internal/domain"
	"netpulse/internal/ingest"
)

// IngestHandler handles HTTP requests for event ingestion.
type IngestHandler struct {
	service *ingest.Service
	logger  *slog.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(service *ingest.Service, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		service: service,
		logger:  logger,
	}
}

// IngestMetric handles POST /v1/events/metrics
// Accepts a metric event and queues it for evaluation.
func (h *IngestHandler) IngestMetric(c *fiber.Ctx) error {
	var ev domain.MetricEvent
	if err := c.BodyParser(&ev); err != nil {
		h.logger.Debug("failed to parse metric event", "error", err)
		return BadRequest(c, "invalid request body")
	}

	env := &domain.EventEnvelope{
		Kind:       domain.EventKindMetric,
		Metric:     &ev,
		ReceivedAt: time.Now().UTC(),
	}
	if err := h.service.Publish(c.Context(), env); err != nil {
		if errors.Is(err, ingest.ErrPublishFailed) {
			return InternalError(c, "failed to queue event")
		}
		return ValidationError(c, err.Error())
	}

	return Accepted(c, fiber.Map{"status": "queued"})
}

// IngestLog handles POST /v1/events/logs
// Accepts a log event and queues it for evaluation.
func (h *IngestHandler) IngestLog(c *fiber.Ctx) error {
	var ev domain.LogEvent
	if err := c.BodyParser(&ev); err != nil {
		h.logger.Debug("failed to parse log event", "error", err)
		return BadRequest(c, "invalid request body")
	}

	env := &domain.EventEnvelope{
		Kind:       domain.EventKindLog,
		Log:        &ev,
		ReceivedAt: time.Now().UTC(),
	}
	if err := h.service.Publish(c.Context(), env); err != nil {
		if errors.Is(err, ingest.ErrPublishFailed) {
			return InternalError(c, "failed to queue event")
		}
		return ValidationError(c, err.Error())
	}

	return Accepted(c, fiber.Map{"status": "queued"})
}
