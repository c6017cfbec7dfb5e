package hosting

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// mimeOverrides fixes the types browsers need for module scripts and web fonts,
// whatever the host's mime database says.
var mimeOverrides = map[string]string{
	".js":    "text/javascript",
	".css":   "text/css",
	".woff2": "application/font-woff2",
}

// MIMETypeMiddleware replaces the Content-Type of successful responses by file extension.
func MIMETypeMiddleware(types map[string]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status != fiber.StatusOK && status != fiber.StatusPartialContent {
			return nil
		}
		if contentType, ok := types[strings.ToLower(path.Ext(c.Path()))]; ok {
			c.Set(fiber.HeaderContentType, contentType)
		}
		return nil
	}
}

// NoCacheMiddleware tells browsers and proxies never to reuse a response.
func NoCacheMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return err
	}
}

// LogAllRequestsMiddleware logs all requests
func LogAllRequestsMiddleware(server string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		if status >= 400 {
			slog.Warn("HTTP request",
				"server", server,
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
				"error", err,
			)
		} else {
			slog.Debug("HTTP request",
				"server", server,
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
			)
		}
		return err
	}
}
