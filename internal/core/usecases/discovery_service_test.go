package usecases_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/ports"
	"github.com/lursoto/wayfarer/internal/core/usecases"
	"github.com/lursoto/wayfarer/internal/pkg/geospatial"
)

var testOrigin = domain.GeoPoint{Lat: 43.263, Lon: -2.935}

func fixedMeta() domain.PlaceMeta {
	return domain.PlaceMeta{Rating: 4.2, CrowdLevel: "Moderate", BestTime: "Morning"}
}

func newSynthetic() *usecases.SyntheticSource {
	return usecases.NewSyntheticSource(rand.New(rand.NewSource(42)), fixedMeta)
}

func TestDiscoveryService_FirstTierWins(t *testing.T) {
	primary := &mockPOISource{
		name: "primary",
		discoverFn: func(ctx context.Context, origin domain.GeoPoint, radius float64, limit int) ([]domain.PointOfInterest, error) {
			return []domain.PointOfInterest{
				{ID: "a", Name: "Guggenheim", Location: domain.GeoPoint{Lat: 43.2687, Lon: -2.9340}},
			}, nil
		},
	}
	secondary := &mockPOISource{
		name: "secondary",
		discoverFn: func(ctx context.Context, origin domain.GeoPoint, radius float64, limit int) ([]domain.PointOfInterest, error) {
			t.Error("secondary tier should not be consulted when the first succeeds")
			return nil, nil
		},
	}

	svc := usecases.NewDiscoveryService(
		[]ports.POISource{primary, secondary}, newSynthetic(), fixedMeta, nil, nil, 5000, 10)

	pois := svc.Discover(context.Background(), testOrigin)
	if len(pois) != 1 {
		t.Fatalf("expected 1 POI, got %d", len(pois))
	}
	if pois[0].Name != "Guggenheim" {
		t.Errorf("expected Guggenheim, got %s", pois[0].Name)
	}
	if pois[0].DistanceKm <= 0 {
		t.Error("expected a computed distance")
	}
}

func TestDiscoveryService_ErrorFallsThrough(t *testing.T) {
	failing := &mockPOISource{
		name: "failing",
		discoverFn: func(ctx context.Context, origin domain.GeoPoint, radius float64, limit int) ([]domain.PointOfInterest, error) {
			return nil, errors.New("gateway timeout")
		},
	}
	second := &mockPOISource{
		name: "second",
		discoverFn: func(ctx context.Context, origin domain.GeoPoint, radius float64, limit int) ([]domain.PointOfInterest, error) {
			return []domain.PointOfInterest{
				{ID: "b", Name: "Old Town", Location: domain.GeoPoint{Lat: 43.2564, Lon: -2.9236}},
			}, nil
		},
	}

	svc := usecases.NewDiscoveryService(
		[]ports.POISource{failing, second}, newSynthetic(), fixedMeta, nil, nil, 5000, 10)

	pois := svc.Discover(context.Background(), testOrigin)
	if len(pois) != 1 || pois[0].Name != "Old Town" {
		t.Fatalf("expected the second tier's result, got %+v", pois)
	}
}

func TestDiscoveryService_EmptyFallsThrough(t *testing.T) {
	empty := &mockPOISource{
		name: "empty",
		discoverFn: func(ctx context.Context, origin domain.GeoPoint, radius float64, limit int) ([]domain.PointOfInterest, error) {
			return []domain.PointOfInterest{}, nil
		},
	}

	svc := usecases.NewDiscoveryService(
		[]ports.POISource{empty, empty}, newSynthetic(), fixedMeta, nil, nil, 5000, 10)

	pois := svc.Discover(context.Background(), testOrigin)
	if len(pois) != 5 {
		t.Fatalf("expected the synthetic tier's 5 places, got %d", len(pois))
	}
}

func TestDiscoveryService_SyntheticTier(t *testing.T) {
	svc := usecases.NewDiscoveryService(nil, newSynthetic(), fixedMeta, nil, nil, 5000, 10)

	pois := svc.Discover(context.Background(), testOrigin)
	if len(pois) != 5 {
		t.Fatalf("expected exactly 5 synthetic POIs, got %d", len(pois))
	}

	wantNames := map[string]bool{
		"Central Park":     true,
		"Museum of Art":    true,
		"Historic Tower":   true,
		"Botanical Garden": true,
		"City Square":      true,
	}
	for _, p := range pois {
		if !wantNames[p.Name] {
			t.Errorf("unexpected synthetic place %q", p.Name)
		}
		dist := geospatial.DistanceKm(testOrigin.Lat, testOrigin.Lon, p.Location.Lat, p.Location.Lon)
		if dist < 0.49 || dist > 5.01 {
			t.Errorf("%s is %.2f km away, want 0.5-5 km", p.Name, dist)
		}
		if p.Meta.Rating == 0 {
			t.Errorf("%s has no metadata attached", p.Name)
		}
	}
}

func TestDiscoveryService_SortedAscendingAndCapped(t *testing.T) {
	src := &mockPOISource{
		discoverFn: func(ctx context.Context, origin domain.GeoPoint, radius float64, limit int) ([]domain.PointOfInterest, error) {
			// Deliberately out of order, farther first
			return []domain.PointOfInterest{
				{ID: "far", Name: "Far", Location: domain.GeoPoint{Lat: origin.Lat + 0.04, Lon: origin.Lon}},
				{ID: "near", Name: "Near", Location: domain.GeoPoint{Lat: origin.Lat + 0.005, Lon: origin.Lon}},
				{ID: "mid", Name: "Mid", Location: domain.GeoPoint{Lat: origin.Lat + 0.02, Lon: origin.Lon}},
			}, nil
		},
	}

	svc := usecases.NewDiscoveryService(
		[]ports.POISource{src}, newSynthetic(), fixedMeta, nil, nil, 5000, 2)

	pois := svc.Discover(context.Background(), testOrigin)
	if len(pois) != 2 {
		t.Fatalf("expected results capped at 2, got %d", len(pois))
	}
	if pois[0].Name != "Near" || pois[1].Name != "Mid" {
		t.Errorf("expected ascending distance order Near, Mid; got %s, %s", pois[0].Name, pois[1].Name)
	}
	if pois[0].DistanceKm > pois[1].DistanceKm {
		t.Error("distances not ascending")
	}
}

func TestDiscoveryService_CacheReadThrough(t *testing.T) {
	calls := 0
	src := &mockPOISource{
		discoverFn: func(ctx context.Context, origin domain.GeoPoint, radius float64, limit int) ([]domain.PointOfInterest, error) {
			calls++
			return []domain.PointOfInterest{
				{ID: "a", Name: "Guggenheim", Location: domain.GeoPoint{Lat: 43.2687, Lon: -2.9340}},
			}, nil
		},
	}

	cache := newMockCache()
	svc := usecases.NewDiscoveryService(
		[]ports.POISource{src}, newSynthetic(), fixedMeta, cache, nil, 5000, 10)

	first := svc.Discover(context.Background(), testOrigin)
	second := svc.Discover(context.Background(), testOrigin)

	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
	if len(first) != len(second) || first[0].Name != second[0].Name {
		t.Error("cached result differs from original")
	}
}

func TestSyntheticSource_DistinctPositions(t *testing.T) {
	src := newSynthetic()

	pois, err := src.Discover(context.Background(), testOrigin, 5000, 10)
	if err != nil {
		t.Fatalf("synthetic tier must not fail: %v", err)
	}
	if len(pois) != 5 {
		t.Fatalf("expected 5 places, got %d", len(pois))
	}

	seen := make(map[domain.GeoPoint]bool)
	for _, p := range pois {
		if seen[p.Location] {
			t.Errorf("duplicate location %+v", p.Location)
		}
		seen[p.Location] = true
	}
}
