package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"netpulse/internal/domain"
	"netpulse/internal/metrics"
	"netpulse/internal/store"
)

// AlertHandler handles HTTP requests for alert operations.
type AlertHandler struct {
	repo   store.AlertRepository
	logger *slog.Logger
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(repo store.AlertRepository, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		repo:   repo,
		logger: logger,
	}
}

// List handles GET /v1/alerts
// Supports filtering by config_id, service_name and status.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter := domain.AlertFilter{
		ConfigID:    c.Query("config_id"),
		ServiceName: c.Query("service_name"),
		Limit:       c.QueryInt("limit"),
		Offset:      c.QueryInt("offset"),
	}
	if v := c.Query("status"); v != "" {
		status := domain.AlertStatus(v)
		if !status.IsValid() {
			return BadRequest(c, "invalid status filter")
		}
		filter.Status = status
	}

	alerts, err := h.repo.List(c.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list alerts", "error", err)
		return InternalError(c, "failed to list alerts")
	}

	return Success(c, alerts)
}

// GetByID handles GET /v1/alerts/:id
func (h *AlertHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	alert, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to get alert", "id", id, "error", err)
		return InternalError(c, "failed to get alert")
	}

	return Success(c, alert)
}

// Acknowledge handles POST /v1/alerts/:id/acknowledge
// Acknowledging an acknowledged alert is a no-op; a resolved alert cannot
// be acknowledged.
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	var req domain.AlertActionRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest(c, "invalid request body")
	}
	if req.Actor == "" {
		return ValidationError(c, "actor is required")
	}

	alert, err := h.repo.Acknowledge(c.Context(), id, req.Actor, time.Now().UTC())
	if err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to acknowledge alert", "id", id, "error", err)
		return InternalError(c, "failed to acknowledge alert")
	}

	h.logger.Info("alert acknowledged", "id", id, "actor", req.Actor)
	return Success(c, alert)
}

// Resolve handles POST /v1/alerts/:id/resolve
// Resolving an already-resolved alert only applies the comment.
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	var req domain.AlertActionRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest(c, "invalid request body")
	}
	if req.Actor == "" {
		return ValidationError(c, "actor is required")
	}

	alert, err := h.repo.Resolve(c.Context(), id, req.Actor, req.Comment, time.Now().UTC())
	if err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to resolve alert", "id", id, "error", err)
		return InternalError(c, "failed to resolve alert")
	}

	metrics.AlertsResolvedTotal.WithLabelValues("user").Inc()
	h.logger.Info("alert resolved", "id", id, "actor", req.Actor)
	return Success(c, alert)
}
