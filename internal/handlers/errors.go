package handlers

import (
	"errors"

	"inventory/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = "1"

// statusFor maps an error kind onto an HTTP status code.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidationFailed:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindReferenceNotFound:
		return fiber.StatusUnprocessableEntity
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as a JSON error response. Internal details are not
// exposed to the client.
func writeError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	message := "Internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindInternal {
		message = appErr.Message
	}

	body := fiber.Map{
		"message": message,
		"error":   string(kind),
	}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}
	if kind == apperr.KindUnavailable {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}
	return c.Status(status).JSON(body)
}

// badRequest reports a malformed request before it reaches a service.
func badRequest(c *fiber.Ctx, message string, err error) error {
	body := fiber.Map{
		"message": message,
		"error":   string(apperr.KindValidationFailed),
	}
	if err != nil {
		body["fields"] = []apperr.FieldError{{Path: "body", Message: err.Error()}}
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
