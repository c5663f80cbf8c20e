// Package api provides HTTP handlers and routing for the NetPulse REST API.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"netpulse/internal/domain"
)

// APIResponse is the envelope every endpoint writes. Success responses
// carry data; failures carry a machine-readable error.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError pairs a stable code with a human-readable message. Clients
// branch on the code, not the message text.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes surfaced in the envelope.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// Success writes a 200 with the given data.
func Success(c *fiber.Ctx, data interface{}) error {
	return SuccessWithStatus(c, fiber.StatusOK, data)
}

// SuccessWithStatus writes a success envelope with a caller-chosen status.
func SuccessWithStatus(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Created writes a 201 with the given data.
func Created(c *fiber.Ctx, data interface{}) error {
	return SuccessWithStatus(c, fiber.StatusCreated, data)
}

// Accepted writes a 202 with the given data. The ingest endpoints use it
// for events that are queued but not yet evaluated.
func Accepted(c *fiber.Ctx, data interface{}) error {
	return SuccessWithStatus(c, fiber.StatusAccepted, data)
}

// NoContent writes a 204 with an empty body.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Error writes an error envelope with the given status and code.
func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest writes a 400 for malformed input.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, ErrCodeBadRequest, message)
}

// ValidationError writes a 400 for input that parsed but failed validation.
func ValidationError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, ErrCodeValidationFailed, message)
}

// NotFound writes a 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict writes a 409. The alert lifecycle uses this for operations
// that are invalid on a resolved alert.
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, ErrCodeConflict, message)
}

// InternalError writes a 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, ErrCodeInternalError, message)
}

// domainError maps the domain sentinels to their HTTP responses: missing
// resources become 404s, lifecycle violations 409s. The second return is
// false when the error is not a sentinel and the handler owns the
// response, typically a logged 500.
func domainError(c *fiber.Ctx, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrAlertNotFound),
		errors.Is(err, domain.ErrConfigNotFound),
		errors.Is(err, domain.ErrChannelNotFound):
		return NotFound(c, err.Error()), true
	case errors.Is(err, domain.ErrAlertResolved):
		return Conflict(c, "alert is already resolved"), true
	}
	return nil, false
}
