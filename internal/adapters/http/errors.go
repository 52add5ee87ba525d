package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, upstream_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnauthorized, "unauthorized", msg)
}

// errUpstream returns a 502 error for backend or collaborator failures.
func errUpstream(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "upstream_error", msg)
}

// errFromDomain maps the domain error taxonomy onto HTTP responses.
// Backend details are logged, never echoed.
func errFromDomain(c *fiber.Ctx, err error, notFoundMsg string) error {
	switch {
	case domain.IsInputError(err):
		return errBadRequest(c, userMessage(err))
	case errors.Is(err, domain.ErrUnauthenticated):
		return errUnauthorized(c, "a signed-in user is required")
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, notFoundMsg)
	case errors.Is(err, domain.ErrTransport):
		LoggerFromCtx(c.UserContext()).Error("upstream failure", "path", c.Path(), "error", err)
		return errUpstream(c, "storage or detection backend unavailable")
	default:
		LoggerFromCtx(c.UserContext()).Error("unhandled error", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
}

// userMessage strips the sentinel prefix from a wrapped input error.
func userMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrParse, domain.ErrRange, domain.ErrInvalidMessage} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
			break
		}
	}
	return msg
}
