package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"netpulse/internal/domain"
	"netpulse/internal/store"
)

// ConfigHandler handles HTTP requests for alert configuration operations.
type ConfigHandler struct {
	repo   store.ConfigRepository
	logger *slog.Logger
}

// NewConfigHandler creates a new configuration handler.
func NewConfigHandler(repo store.ConfigRepository, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /v1/alert-configs
func (h *ConfigHandler) Create(c *fiber.Ctx) error {
	var req domain.CreateConfigRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse request body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	cfg := req.ToConfiguration(uuid.New().String())
	if err := cfg.Validate(); err != nil {
		h.logger.Debug("validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	if err := h.repo.Create(c.Context(), cfg); err != nil {
		h.logger.Error("failed to create configuration", "error", err)
		return InternalError(c, "failed to create configuration")
	}

	h.logger.Info("created alert configuration", "id", cfg.ID, "name", cfg.Name)
	return Created(c, cfg)
}

// List handles GET /v1/alert-configs
func (h *ConfigHandler) List(c *fiber.Ctx) error {
	filter := domain.ConfigFilter{
		ServiceName: c.Query("service_name"),
		Limit:       c.QueryInt("limit"),
		Offset:      c.QueryInt("offset"),
	}
	if v := c.Query("enabled"); v != "" {
		enabled := v == "true"
		filter.Enabled = &enabled
	}

	configs, err := h.repo.List(c.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list configurations", "error", err)
		return InternalError(c, "failed to list configurations")
	}

	return Success(c, configs)
}

// GetByID handles GET /v1/alert-configs/:id
func (h *ConfigHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	cfg, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to get configuration", "id", id, "error", err)
		return InternalError(c, "failed to get configuration")
	}

	return Success(c, cfg)
}

// Update handles PUT /v1/alert-configs/:id
func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	var req domain.UpdateConfigRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse request body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	cfg, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to get configuration", "id", id, "error", err)
		return InternalError(c, "failed to get configuration")
	}

	req.ApplyTo(cfg)
	if err := cfg.Validate(); err != nil {
		h.logger.Debug("validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	if err := h.repo.Update(c.Context(), cfg); err != nil {
		h.logger.Error("failed to update configuration", "id", id, "error", err)
		return InternalError(c, "failed to update configuration")
	}

	h.logger.Info("updated alert configuration", "id", cfg.ID)
	return Success(c, cfg)
}

// Delete handles DELETE /v1/alert-configs/:id
// The configuration's alert history is removed by cascade.
func (h *ConfigHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	if err := h.repo.Delete(c.Context(), id); err != nil {
		if resp, ok := domainError(c, err); ok {
			return resp
		}
		h.logger.Error("failed to delete configuration", "id", id, "error", err)
		return InternalError(c, "failed to delete configuration")
	}

	h.logger.Info("deleted alert configuration", "id", id)
	return NoContent(c)
}
