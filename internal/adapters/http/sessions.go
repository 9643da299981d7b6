package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/usecases"
)

// CreateSessionHandler starts a new trip session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Create()
		return c.Status(201).JSON(session.Snapshot())
	}
}

// GetSessionHandler returns a snapshot of a session's composed state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Get(c.Params("id"))
		if session == nil {
			return errNotFound(c, "session not found")
		}
		return c.JSON(session.Snapshot())
	}
}

// DeleteSessionHandler tears a session down.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if deps.Sessions.Get(id) == nil {
			return errNotFound(c, "session not found")
		}
		deps.Sessions.Delete(id)
		return c.SendStatus(204)
	}
}

// locationReportBody carries the client's geolocation outcome: either a
// coordinate or a failure kind (denied, timeout, unavailable).
type locationReportBody struct {
	Point   *domain.GeoPoint `json:"point,omitempty"`
	Failure string           `json:"failure,omitempty"`
}

// ReportLocationHandler feeds the client's geolocation result into the
// session. Failures still resolve: the session falls back to a default
// coordinate and reports why.
func ReportLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Get(c.Params("id"))
		if session == nil {
			return errNotFound(c, "session not found")
		}

		var body locationReportBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		report := usecases.LocationReport{Point: body.Point}
		switch body.Failure {
		case "":
			if body.Point == nil || !body.Point.Valid() {
				return errBadRequest(c, "point or failure is required")
			}
		case string(domain.LocationDenied), string(domain.LocationTimeout), string(domain.LocationUnavailable):
			report.Point = nil
			report.Failure = domain.LocationFailure(body.Failure)
		default:
			return errBadRequest(c, "unknown failure kind: "+body.Failure)
		}

		loc := session.ResolveLocation(report)
		return c.JSON(loc)
	}
}

// destinationBody carries a destination selection. Initial marks an
// externally supplied destination eligible for one automatic directions
// request.
type destinationBody struct {
	Place   domain.PlaceCandidate `json:"place"`
	Initial bool                  `json:"initial,omitempty"`
}

// SelectDestinationHandler makes a place the session's destination. Any
// existing route is cleared and POI discovery restarts around the new
// destination.
func SelectDestinationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Get(c.Params("id"))
		if session == nil {
			return errNotFound(c, "session not found")
		}

		var body destinationBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if !body.Place.Location.Valid() {
			return errBadRequest(c, "place location must be a valid coordinate")
		}
		if body.Place.DisplayName == "" {
			return errBadRequest(c, "place display_name is required")
		}

		if body.Initial {
			session.SetInitialDestination(body.Place)
		} else {
			session.SelectDestination(body.Place)
		}
		return c.JSON(session.Snapshot())
	}
}

// ClearDestinationHandler drops the destination and route.
func ClearDestinationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Get(c.Params("id"))
		if session == nil {
			return errNotFound(c, "session not found")
		}
		session.ClearDestination()
		return c.JSON(session.Snapshot())
	}
}

// RequestDirectionsHandler resolves a route from the user location to
// the current destination. 409 when the session has no destination or
// no resolved location yet.
func RequestDirectionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Get(c.Params("id"))
		if session == nil {
			return errNotFound(c, "session not found")
		}

		route, err := session.RequestDirections(c.Context())
		if err != nil {
			return errConflict(c, err.Error())
		}
		return c.JSON(route)
	}
}

// ClearRouteHandler removes the route but keeps the destination.
func ClearRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Get(c.Params("id"))
		if session == nil {
			return errNotFound(c, "session not found")
		}
		session.ClearRoute()
		return c.JSON(session.Snapshot())
	}
}

type modeBody struct {
	Mode string `json:"mode"`
}

// SetModeHandler switches the transport mode. The current route is left
// as-is; the client re-requests directions to recompute.
func SetModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := deps.Sessions.Get(c.Params("id"))
		if session == nil {
			return errNotFound(c, "session not found")
		}

		var body modeBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		if err := session.SetMode(domain.TransportMode(body.Mode)); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(session.Snapshot())
	}
}
