package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint. Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0"

		case strings.HasPrefix(path, "/v1/sessions"):
			ttl = "no-store" // Session state is per-client and live

		case strings.HasPrefix(path, "/v1/places/search"):
			ttl = "public, max-age=3600" // Geocode answers are stable

		case strings.HasPrefix(path, "/v1/places/reverse"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/pois"):
			ttl = "public, max-age=600" // Nearby POIs change slowly

		case strings.HasPrefix(path, "/v1/routes"):
			ttl = "public, max-age=300" // Traffic-dependent, keep short

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
