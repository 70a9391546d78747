package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage fault")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// NotFound wraps ErrNotFound with a caller-facing message.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// Forbidden wraps ErrForbidden with a caller-facing message.
func Forbidden(format string, args ...any) error {
	return wrap(ErrForbidden, format, args...)
}

// Validation wraps ErrValidation with a caller-facing message.
func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

// Storage wraps ErrStorage and the underlying fault.
func Storage(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, fmt.Sprintf(format, args...), err)
}

// Unauthorized wraps ErrUnauthorized with a caller-facing message.
func Unauthorized(format string, args ...any) error {
	return wrap(ErrUnauthorized, format, args...)
}

// Conflict wraps ErrConflict with a caller-facing message.
func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Status maps an error to the HTTP status code returned to the caller.
func Status(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Code returns the machine-readable error code used in JSON bodies.
func Code(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusConflict:
		return "conflict"
	default:
		return "internal_server_error"
	}
}

// Respond writes err as {"error", "message"}. Storage and unexpected faults
// are logged and hidden behind a generic message.
func Respond(c *fiber.Ctx, err error) error {
	status := Status(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
		message = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   Code(status),
		"message": message,
	})
}

// ErrorHandler is the fiber.Config ErrorHandler. It keeps fiber's own errors
// (404 routes, body limit) and maps everything else through Respond.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   Code(fe.Code),
			"message": fe.Message,
		})
	}
	return Respond(c, err)
}
