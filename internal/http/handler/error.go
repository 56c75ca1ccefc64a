package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/repository"
	"docvault/internal/retention"
	"docvault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// mapServiceError renders service and repository errors with the status and
// code every handler shares. Unrecognized errors become a plain 500.
func mapServiceError(c *fiber.Ctx, err error) error {
	var retErr *retention.Error
	switch {
	case errors.As(err, &retErr):
		return writeError(c, fiber.StatusForbidden, "RETENTION_PROTECTED", "document is past its deletion window")
	case errors.Is(err, repository.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrNoPreviewAvailable):
		return writeError(c, fiber.StatusNotFound, "NO_PREVIEW", "document has no preview")
	case errors.Is(err, service.ErrImmutableFile):
		return writeError(c, fiber.StatusConflict, "IMMUTABLE_FILE", "stored files never change; upload a replacement instead")
	case errors.Is(err, repository.ErrDuplicateKey):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_KEY", "resource already exists")
	case errors.Is(err, repository.ErrReferentialIntegrity):
		return writeError(c, fiber.StatusConflict, "STILL_REFERENCED", "resource is still referenced")
	case errors.Is(err, service.ErrUnsavedDocument):
		return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_OPERATION", "document is not stored")
	case errors.Is(err, service.ErrNameRequired):
		return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrSlugRequired),
		errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "bad request")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "BODY_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
