package ports

import (
	"context"

	"github.com/lursoto/wayfarer/internal/core/domain"
)

// POISource is a single tier of the discovery cascade. A tier that finds
// nothing returns an empty slice; the coordinator treats errors and empty
// results identically and moves on to the next tier.
type POISource interface {
	// Name identifies the tier in logs and metrics.
	Name() string
	Discover(ctx context.Context, origin domain.GeoPoint, radiusMeters float64, limit int) ([]domain.PointOfInterest, error)
}

// Geocoder translates free-text queries and coordinates into place candidates.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error)
	Reverse(ctx context.Context, point domain.GeoPoint) (*domain.PlaceCandidate, error)
}

// RoutingProvider computes a full-geometry route between two points.
type RoutingProvider interface {
	Route(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TransportMode) (*domain.Route, error)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PlaceStore persists geodata lookups so they survive restarts.
// Implementations return ok=false on a miss without an error.
type PlaceStore interface {
	GetGeocode(ctx context.Context, query string) ([]domain.PlaceCandidate, bool, error)
	PutGeocode(ctx context.Context, query string, candidates []domain.PlaceCandidate) error
	GetPOIs(ctx context.Context, key string) ([]domain.PointOfInterest, bool, error)
	PutPOIs(ctx context.Context, key string, pois []domain.PointOfInterest) error
}

// EventPublisher publishes session events to a message broker.
type EventPublisher interface {
	PublishAchievement(ctx context.Context, sessionID string, a *domain.Achievement) error
	PublishSessionState(ctx context.Context, sessionID string, data []byte) error
}
