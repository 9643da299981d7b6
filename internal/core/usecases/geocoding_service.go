package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/ports"
	"github.com/lursoto/wayfarer/internal/pkg/metrics"
)

// maxSearchCandidates caps the candidate list shown for a text search.
const maxSearchCandidates = 5

// GeocodingService handles forward and reverse geocoding. Failures are
// logged and swallowed: a search that fails returns an empty list and a
// reverse lookup that fails returns nil, so the caller never has to
// surface a blocking error for a map interaction.
type GeocodingService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
	store    ports.PlaceStore
}

// NewGeocodingService creates a new GeocodingService. cache and store may be nil.
func NewGeocodingService(geocoder ports.Geocoder, cache ports.CacheService, store ports.PlaceStore) *GeocodingService {
	return &GeocodingService{geocoder: geocoder, cache: cache, store: store}
}

// SearchByText returns up to five place candidates for a free-text query.
func (s *GeocodingService) SearchByText(ctx context.Context, query string) []domain.PlaceCandidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	cacheKey := "geocode:q:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var candidates []domain.PlaceCandidate
			if err := json.Unmarshal(data, &candidates); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return candidates
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	if s.store != nil {
		if candidates, ok, err := s.store.GetGeocode(ctx, query); err == nil && ok {
			s.cacheCandidates(ctx, cacheKey, candidates)
			return candidates
		}
	}

	candidates, err := s.geocoder.Search(ctx, query, maxSearchCandidates)
	if err != nil {
		slog.Warn("geocode search failed", "query", query, "error", err)
		return []domain.PlaceCandidate{}
	}
	if len(candidates) > maxSearchCandidates {
		candidates = candidates[:maxSearchCandidates]
	}

	s.cacheCandidates(ctx, cacheKey, candidates)
	if s.store != nil {
		if err := s.store.PutGeocode(ctx, query, candidates); err != nil {
			slog.Warn("geocode store write failed", "error", err)
		}
	}

	return candidates
}

// Reverse resolves a map-click coordinate to a place. The returned
// candidate merges the service's address payload with the clicked
// coordinate. A failed lookup yields nil and the click is ignored.
func (s *GeocodingService) Reverse(ctx context.Context, point domain.GeoPoint) *domain.PlaceCandidate {
	if !point.Valid() {
		return nil
	}

	cacheKey := fmt.Sprintf("geocode:rev:%.5f:%.5f", point.Lat, point.Lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var candidate domain.PlaceCandidate
			if err := json.Unmarshal(data, &candidate); err == nil {
				metrics.CacheHits.WithLabelValues("reverse").Inc()
				return &candidate
			}
		}
		metrics.CacheMisses.WithLabelValues("reverse").Inc()
	}

	candidate, err := s.geocoder.Reverse(ctx, point)
	if err != nil || candidate == nil {
		slog.Warn("reverse geocode failed", "lat", point.Lat, "lon", point.Lon, "error", err)
		return nil
	}

	// The candidate always carries the exact clicked coordinate, not the
	// snapped one the service answered with.
	candidate.Location = point

	if s.cache != nil {
		if data, err := json.Marshal(candidate); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return candidate
}

func (s *GeocodingService) cacheCandidates(ctx context.Context, key string, candidates []domain.PlaceCandidate) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(candidates); err == nil {
		_ = s.cache.Set(ctx, key, data, 3600)
	}
}
