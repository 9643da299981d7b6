package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/ports"
	"github.com/lursoto/wayfarer/internal/pkg/geospatial"
	"github.com/lursoto/wayfarer/internal/pkg/metrics"
)

// fallbackMinutesPerKm estimates duration when the routing service is
// unreachable and the path has to be synthesized.
const fallbackMinutesPerKm = 3.0

// fallbackSampleEveryKm spaces the synthesized path at one point per 500 m.
const fallbackSampleEveryKm = 0.5

// RouteService resolves routes between two coordinates. The routing
// service is tried first; any failure degrades to a straight-line
// synthesis so the caller always receives a usable route.
type RouteService struct {
	router ports.RoutingProvider
	cache  ports.CacheService
}

// NewRouteService creates a new RouteService. cache may be nil.
func NewRouteService(router ports.RoutingProvider, cache ports.CacheService) *RouteService {
	return &RouteService{router: router, cache: cache}
}

// Resolve computes a route from origin to destination for the given mode.
// destinationName feeds the fallback step instruction; only its first
// comma-delimited segment is used. A new resolution always replaces any
// previous route wholesale.
func (s *RouteService) Resolve(ctx context.Context, origin, destination domain.GeoPoint, destinationName string, mode domain.TransportMode) *domain.Route {
	if !mode.Valid() {
		mode = domain.ModeDriving
	}

	cacheKey := fmt.Sprintf("route:%s:%.5f:%.5f:%.5f:%.5f",
		mode, origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var route domain.Route
			if err := json.Unmarshal(data, &route); err == nil && len(route.Geometry) >= 2 {
				metrics.CacheHits.WithLabelValues("route").Inc()
				return &route
			}
		}
		metrics.CacheMisses.WithLabelValues("route").Inc()
	}

	route, err := s.router.Route(ctx, origin, destination, mode)
	if err != nil || route == nil || len(route.Geometry) < 2 {
		slog.Warn("routing service failed, synthesizing route",
			"mode", mode, "error", err)
		metrics.RouteFallbacks.Inc()
		route = s.synthesize(origin, destination, destinationName)
	} else if s.cache != nil {
		if data, err := json.Marshal(route); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	metrics.RoutesResolved.WithLabelValues(string(mode)).Inc()
	return route
}

// synthesize builds a straight-line route: evenly spaced samples along the
// geodesic between the endpoints, duration estimated at three minutes per
// kilometer. Endpoints always sit at the first and last index.
func (s *RouteService) synthesize(origin, destination domain.GeoPoint, destinationName string) *domain.Route {
	distKm := geospatial.DistanceKm(origin.Lat, origin.Lon, destination.Lat, destination.Lon)

	samples := int(math.Ceil(distKm / fallbackSampleEveryKm))
	if samples < 5 {
		samples = 5
	}

	line := geospatial.SampleLine(origin.Lat, origin.Lon, destination.Lat, destination.Lon, samples)
	geometry := make([]domain.GeoPoint, len(line))
	for i, pt := range line {
		geometry[i] = domain.GeoPoint{Lat: pt[0], Lon: pt[1]}
	}

	name := domain.PlaceCandidate{DisplayName: destinationName}.ShortName()
	if name == "" {
		name = "your destination"
	}

	return &domain.Route{
		Geometry:        geometry,
		DistanceKm:      math.Round(distKm*10) / 10,
		DurationMinutes: int(math.Round(fallbackMinutesPerKm * distKm)),
		Steps: []domain.RouteStep{
			{
				Instruction:    fmt.Sprintf("Head towards %s", name),
				DistanceMeters: int(math.Round(distKm * 1000)),
			},
		},
		Fallback: true,
	}
}
