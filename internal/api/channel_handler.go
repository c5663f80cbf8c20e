package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"netpulse/internal/domain"
	"netpulse/internal/store"
)

// ChannelHandler handles HTTP requests for notification channel operations.
type ChannelHandler struct {
	repo   store.ChannelRepository
	logger *slog.Logger
}

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(repo store.ChannelRepository, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /v1/channels
func (h *ChannelHandler) Create(c *fiber.Ctx) error {
	var req domain.CreateChannelRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse request body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	ch := req.ToChannel(uuid.New().String())
	if err := ch.Validate(); err != nil {
		h.logger.Debug("validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	if err := h.repo.Create(c.Context(), ch); err != nil {
		h.logger.Error("failed to create channel", "error", err)
		return InternalError(c, "failed to create channel")
	}

	h.logger.Info("created notification channel", "id", ch.ID, "name", ch.Name, "type", ch.Type)
	return Created(c, ch)
}

// List handles GET /v1/channels
func (h *ChannelHandler) List(c *fiber.Ctx) error {
	channels, err := h.repo.List(c.Context())
	if err != nil {
		h.logger.Error("failed to list channels", "error", err)
		return InternalError(c, "failed to list channels")
	}

	return Success(c, channels)
}

// GetByID handles GET /v1/channels/:id
func (h *ChannelHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	ch, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to get channel", "id", id, "error", err)
		return InternalError(c, "failed to get channel")
	}

	return Success(c, ch)
}

// Update handles PUT /v1/channels/:id
func (h *ChannelHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	var req domain.UpdateChannelRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse request body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	ch, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to get channel", "id", id, "error", err)
		return InternalError(c, "failed to get channel")
	}

	req.ApplyTo(ch)
	if err := ch.Validate(); err != nil {
		h.logger.Debug("validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	if err := h.repo.Update(c.Context(), ch); err != nil {
		h.logger.Error("failed to update channel", "id", id, "error", err)
		return InternalError(c, "failed to update channel")
	}

	h.logger.Info("updated notification channel", "id", ch.ID)
	return Success(c, ch)
}

// Delete handles DELETE /v1/channels/:id
func (h *ChannelHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	if err := h.repo.Delete(c.Context(), id); err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to delete channel", "id", id, "error", err)
		return InternalError(c, "failed to delete channel")
	}

	h.logger.Info("deleted notification channel", "id", id)
	return NoContent(c)
}
