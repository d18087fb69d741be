package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CurrentAPIVersion is reported on every API response.
const CurrentAPIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores it in context and
// echoes the served version back
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := strings.TrimPrefix(strings.TrimSpace(c.Get("X-Api-Version", CurrentAPIVersion)), "v")

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = "1.0.0"
		}

		// Store version in context
		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", CurrentAPIVersion)

		return c.Next()
	}
}

// APIVersion returns the version requested by the client.
func APIVersion(c *fiber.Ctx) string {
	if v, ok := c.Locals("apiVersion").(string); ok {
		return v
	}
	return CurrentAPIVersion
}
