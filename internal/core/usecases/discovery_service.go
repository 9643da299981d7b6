package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/ports"
	"github.com/lursoto/wayfarer/internal/pkg/geospatial"
	"github.com/lursoto/wayfarer/internal/pkg/metrics"
)

// DiscoveryService finds points of interest around a coordinate through an
// ordered cascade of sources. Each tier is consulted only when the previous
// tier failed or found nothing; the terminal synthetic tier always produces
// results, so Discover never returns an empty set.
type DiscoveryService struct {
	sources    []ports.POISource
	fallback   *SyntheticSource
	meta       MetaFunc
	cache      ports.CacheService
	store      ports.PlaceStore
	radius     float64
	maxResults int
}

// NewDiscoveryService creates a DiscoveryService. sources are the network
// tiers, tried in order; fallback is the guaranteed terminal tier. cache and
// store may be nil.
func NewDiscoveryService(sources []ports.POISource, fallback *SyntheticSource, meta MetaFunc,
	cache ports.CacheService, store ports.PlaceStore, radiusMeters float64, maxResults int) *DiscoveryService {
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &DiscoveryService{
		sources:    sources,
		fallback:   fallback,
		meta:       meta,
		cache:      cache,
		store:      store,
		radius:     radiusMeters,
		maxResults: maxResults,
	}
}

// Discover returns points of interest around origin, ascending by distance.
// The result replaces any previously displayed set in full.
func (s *DiscoveryService) Discover(ctx context.Context, origin domain.GeoPoint) []domain.PointOfInterest {
	cacheKey := fmt.Sprintf("pois:%.4f:%.4f:%.0f", origin.Lat, origin.Lon, s.radius)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var pois []domain.PointOfInterest
			if err := json.Unmarshal(data, &pois); err == nil && len(pois) > 0 {
				metrics.CacheHits.WithLabelValues("pois").Inc()
				return pois
			}
		}
		metrics.CacheMisses.WithLabelValues("pois").Inc()
	}

	if s.store != nil {
		if pois, ok, err := s.store.GetPOIs(ctx, cacheKey); err == nil && ok && len(pois) > 0 {
			s.cacheResult(ctx, cacheKey, pois)
			return pois
		}
	}

	for _, src := range s.sources {
		pois, err := src.Discover(ctx, origin, s.radius, s.maxResults)
		if err != nil {
			// A failed tier is treated exactly like an empty one.
			metrics.DiscoveryTierResults.WithLabelValues(src.Name(), "error").Inc()
			slog.Warn("poi source failed", "source", src.Name(), "error", err)
			continue
		}
		if len(pois) == 0 {
			metrics.DiscoveryTierResults.WithLabelValues(src.Name(), "empty").Inc()
			continue
		}

		metrics.DiscoveryTierResults.WithLabelValues(src.Name(), "hit").Inc()
		pois = s.finalize(origin, pois)
		s.persist(ctx, cacheKey, pois)
		return pois
	}

	// Terminal tier: synthesized around the origin, never empty.
	pois, _ := s.fallback.Discover(ctx, origin, s.radius, s.maxResults)
	metrics.DiscoveryTierResults.WithLabelValues(s.fallback.Name(), "hit").Inc()
	return s.finalize(origin, pois)
}

// finalize computes distances, attaches presentation metadata where a
// source left it blank, sorts ascending by distance, and caps the set.
func (s *DiscoveryService) finalize(origin domain.GeoPoint, pois []domain.PointOfInterest) []domain.PointOfInterest {
	for i := range pois {
		pois[i].DistanceKm = geospatial.DistanceKm(
			origin.Lat, origin.Lon,
			pois[i].Location.Lat, pois[i].Location.Lon,
		)
		if pois[i].Meta.Rating == 0 && s.meta != nil {
			pois[i].Meta = s.meta()
		}
	}

	sort.Slice(pois, func(i, j int) bool {
		return pois[i].DistanceKm < pois[j].DistanceKm
	})

	if len(pois) > s.maxResults {
		pois = pois[:s.maxResults]
	}
	return pois
}

func (s *DiscoveryService) persist(ctx context.Context, key string, pois []domain.PointOfInterest) {
	s.cacheResult(ctx, key, pois)
	if s.store != nil {
		if err := s.store.PutPOIs(ctx, key, pois); err != nil {
			slog.Warn("poi store write failed", "error", err)
		}
	}
}

func (s *DiscoveryService) cacheResult(ctx context.Context, key string, pois []domain.PointOfInterest) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(pois); err == nil {
		// 10 minutes: nearby POIs change slowly.
		_ = s.cache.Set(ctx, key, data, 600)
	}
}
