package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"salesapi/utils"
)

// RequestIDKey is the Locals key the requestid middleware stores IDs under.
const RequestIDKey = "requestid"

// StatusFor maps an error returned by a handler to an HTTP status code.
func StatusFor(err error) int {
	if re, ok := utils.AsRequestError(err); ok {
		return re.Status()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func messageFor(err error) string {
	if re, ok := utils.AsRequestError(err); ok {
		return re.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "Internal Server Error"
}

// ErrorHandler renders every handler error as {"status":"error","message":...}.
// Server-side causes are logged, never returned.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Errorf("❌ [ERROR HANDLER] %s %s request_id=%v: %v", c.Method(), c.Path(), c.Locals(RequestIDKey), err)
	}
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": messageFor(err)})
}
