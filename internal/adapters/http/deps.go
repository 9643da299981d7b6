package http

import (
	"github.com/nats-io/nats.go"

	"github.com/lursoto/wayfarer/internal/adapters/postgres"
	"github.com/lursoto/wayfarer/internal/adapters/valkey"
	"github.com/lursoto/wayfarer/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Geocoding *usecases.GeocodingService
	Discovery *usecases.DiscoveryService
	Routes    *usecases.RouteService
	Sessions  *usecases.SessionManager
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
