package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lursoto/wayfarer/internal/core/domain"
)

// SearchPlacesHandler resolves a free-text query to place candidates.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		candidates := deps.Geocoding.SearchByText(c.Context(), query)

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(fiber.Map{
			"query":      query,
			"candidates": candidates,
		})
	}
}

// ReversePlaceHandler resolves a coordinate to the nearest named place.
func ReversePlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)

		point := domain.GeoPoint{Lat: lat, Lon: lon}
		if !point.Valid() {
			return errBadRequest(c, "lat and lon must be valid coordinates")
		}

		candidate := deps.Geocoding.Reverse(c.Context(), point)
		if candidate == nil {
			return errNotFound(c, "no place found at this location")
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(candidate)
	}
}

// NearbyPOIsHandler returns points of interest around a coordinate.
// The discovery cascade always produces results, falling back to
// representative places when no provider responds.
func NearbyPOIsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)

		origin := domain.GeoPoint{Lat: lat, Lon: lon}
		if !origin.Valid() {
			return errBadRequest(c, "lat and lon must be valid coordinates")
		}

		pois := deps.Discovery.Discover(c.Context(), origin)

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(fiber.Map{
			"origin": origin,
			"pois":   pois,
		})
	}
}

// routeRequest is the body for stateless route resolution.
type routeRequest struct {
	Origin          domain.GeoPoint `json:"origin"`
	Destination     domain.GeoPoint `json:"destination"`
	DestinationName string          `json:"destination_name"`
	Mode            string          `json:"mode"`
}

// ResolveRouteHandler computes a route between two points. Unknown or
// missing modes default to driving; provider failures degrade to an
// estimated straight-line route rather than an error.
func ResolveRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		if !req.Origin.Valid() || !req.Destination.Valid() {
			return errBadRequest(c, "origin and destination must be valid coordinates")
		}

		mode := domain.TransportMode(req.Mode)
		route := deps.Routes.Resolve(c.Context(), req.Origin, req.Destination,
			req.DestinationName, mode)

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(route)
	}
}
