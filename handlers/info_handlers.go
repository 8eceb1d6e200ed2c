package handlers

import (
	_ "embed"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// HealthMessage is the fixed body of the health check.
const HealthMessage = "This is a cool assignment! Thank you Anthony :)"

//go:embed description.md
var description string

// HandleRoot describes the service, its endpoints and their parameters.
func HandleRoot(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(description)
}

// HandleHealth always answers 200 with HealthMessage.
func HandleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthMessage)
}

// HandleVersion prints the binary's build information.
func HandleVersion(c *fiber.Ctx) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("no build information available")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
	return c.SendString("<pre>\n" + info.String() + "</pre>\n")
}
