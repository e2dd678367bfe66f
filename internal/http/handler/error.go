package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"shopapi/internal/http/middleware"
	"shopapi/internal/service"
)

// errorPayload defines the standardized error response body.
// Error carries the human-readable message clients already match on ("Cart empty").
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "USER_NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(k service.Kind) int {
	switch k {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindValidation, service.KindConflict, service.KindInsufficientFunds:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// writeServiceError renders domain errors with their own message; anything else is logged
// and answered with the operation's generic failure message.
func writeServiceError(c *fiber.Ctx, log zerolog.Logger, err error, failure string) error {
	var de *service.Error
	if errors.As(err, &de) {
		return writeError(c, statusFor(de.Kind), de.Code, de.Message)
	}

	log.Error().Err(err).
		Str("request_id", middleware.RequestIDFrom(c)).
		Str("path", c.Path()).
		Msg(failure)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", failure)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "Bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "Not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "Method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "Payload too large")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
	}
}
