package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lursoto/wayfarer/internal/core/domain"
)

// PlaceStore implements ports.PlaceStore on Postgres. It persists geocode
// and POI lookups so results survive restarts and spare the upstream
// services repeat queries. Entries expire by age at read time.
type PlaceStore struct {
	db     *DB
	maxAge time.Duration
}

// NewPlaceStore creates a PlaceStore. Entries older than maxAge are
// treated as misses.
func NewPlaceStore(db *DB, maxAge time.Duration) *PlaceStore {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &PlaceStore{db: db, maxAge: maxAge}
}

// GetGeocode returns the cached candidates for a query, if fresh.
func (s *PlaceStore) GetGeocode(ctx context.Context, query string) ([]domain.PlaceCandidate, bool, error) {
	var payload []byte
	err := s.db.Pool.QueryRow(ctx, `
		SELECT payload FROM geocode_cache
		WHERE query = $1 AND fetched_at > $2
	`, normalize(query), time.Now().Add(-s.maxAge)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("geocode cache read: %w", err)
	}

	var candidates []domain.PlaceCandidate
	if err := json.Unmarshal(payload, &candidates); err != nil {
		return nil, false, fmt.Errorf("geocode cache payload: %w", err)
	}
	return candidates, true, nil
}

// PutGeocode upserts the candidates for a query.
func (s *PlaceStore) PutGeocode(ctx context.Context, query string, candidates []domain.PlaceCandidate) error {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return err
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO geocode_cache (query, payload, fetched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (query) DO UPDATE SET payload = $2, fetched_at = now()
	`, normalize(query), payload)
	if err != nil {
		return fmt.Errorf("geocode cache write: %w", err)
	}
	return nil
}

// GetPOIs returns the cached discovery result for a key, if fresh.
func (s *PlaceStore) GetPOIs(ctx context.Context, key string) ([]domain.PointOfInterest, bool, error) {
	var payload []byte
	err := s.db.Pool.QueryRow(ctx, `
		SELECT payload FROM poi_cache
		WHERE cache_key = $1 AND fetched_at > $2
	`, key, time.Now().Add(-s.maxAge)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("poi cache read: %w", err)
	}

	var pois []domain.PointOfInterest
	if err := json.Unmarshal(payload, &pois); err != nil {
		return nil, false, fmt.Errorf("poi cache payload: %w", err)
	}
	return pois, true, nil
}

// PutPOIs upserts a discovery result under its cache key.
func (s *PlaceStore) PutPOIs(ctx context.Context, key string, pois []domain.PointOfInterest) error {
	payload, err := json.Marshal(pois)
	if err != nil {
		return err
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO poi_cache (cache_key, payload, fetched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (cache_key) DO UPDATE SET payload = $2, fetched_at = now()
	`, key, payload)
	if err != nil {
		return fmt.Errorf("poi cache write: %w", err)
	}
	return nil
}

// normalize collapses whitespace so equivalent queries share a cache row.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
