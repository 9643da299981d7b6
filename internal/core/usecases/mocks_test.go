package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/lursoto/wayfarer/internal/core/domain"
)

// --- Mock POISource ---

type mockPOISource struct {
	name       string
	discoverFn func(ctx context.Context, origin domain.GeoPoint, radiusMeters float64, limit int) ([]domain.PointOfInterest, error)
}

func (m *mockPOISource) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func (m *mockPOISource) Discover(ctx context.Context, origin domain.GeoPoint, radiusMeters float64, limit int) ([]domain.PointOfInterest, error) {
	if m.discoverFn != nil {
		return m.discoverFn(ctx, origin, radiusMeters, limit)
	}
	return nil, nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	searchFn  func(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error)
	reverseFn func(ctx context.Context, point domain.GeoPoint) (*domain.PlaceCandidate, error)
}

func (m *mockGeocoder) Search(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockGeocoder) Reverse(ctx context.Context, point domain.GeoPoint) (*domain.PlaceCandidate, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, point)
	}
	return nil, nil
}

// --- Mock RoutingProvider ---

type mockRouter struct {
	routeFn func(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TransportMode) (*domain.Route, error)
}

func (m *mockRouter) Route(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TransportMode) (*domain.Route, error) {
	if m.routeFn != nil {
		return m.routeFn(ctx, origin, destination, mode)
	}
	return nil, errors.New("no route")
}

// --- Mock CacheService (in-memory, no TTL expiry) ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("valkey nil message")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockEvents struct {
	mu           sync.Mutex
	achievements []domain.Achievement
	states       [][]byte
}

func (m *mockEvents) PublishAchievement(ctx context.Context, sessionID string, a *domain.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.achievements = append(m.achievements, *a)
	return nil
}

func (m *mockEvents) PublishSessionState(ctx context.Context, sessionID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, data)
	return nil
}

func (m *mockEvents) achievementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.achievements)
}
