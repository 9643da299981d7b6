package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/usecases"
)

func TestGeocodingService_SearchByText(t *testing.T) {
	geocoder := &mockGeocoder{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error) {
			if query != "bilbao" {
				t.Errorf("unexpected query %q", query)
			}
			return []domain.PlaceCandidate{
				{ID: "1", DisplayName: "Bilbao, Biscay, Spain", Location: domain.GeoPoint{Lat: 43.263, Lon: -2.935}},
			}, nil
		},
	}

	svc := usecases.NewGeocodingService(geocoder, nil, nil)
	candidates := svc.SearchByText(context.Background(), "  bilbao  ")

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].ShortName() != "Bilbao" {
		t.Errorf("expected short name Bilbao, got %s", candidates[0].ShortName())
	}
}

func TestGeocodingService_SearchCapsCandidates(t *testing.T) {
	geocoder := &mockGeocoder{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error) {
			var out []domain.PlaceCandidate
			for i := 0; i < 8; i++ {
				out = append(out, domain.PlaceCandidate{ID: fmt.Sprintf("%d", i), DisplayName: "X"})
			}
			return out, nil
		},
	}

	svc := usecases.NewGeocodingService(geocoder, nil, nil)
	candidates := svc.SearchByText(context.Background(), "x")

	if len(candidates) != 5 {
		t.Errorf("expected candidates capped at 5, got %d", len(candidates))
	}
}

func TestGeocodingService_SearchFailureIsSilent(t *testing.T) {
	geocoder := &mockGeocoder{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error) {
			return nil, errors.New("upstream 502")
		},
	}

	svc := usecases.NewGeocodingService(geocoder, nil, nil)
	candidates := svc.SearchByText(context.Background(), "somewhere")

	if candidates == nil {
		t.Fatal("expected an empty slice, not nil")
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestGeocodingService_SearchEmptyQuery(t *testing.T) {
	called := false
	geocoder := &mockGeocoder{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error) {
			called = true
			return nil, nil
		},
	}

	svc := usecases.NewGeocodingService(geocoder, nil, nil)
	if got := svc.SearchByText(context.Background(), "   "); len(got) != 0 {
		t.Errorf("expected no candidates for blank query, got %d", len(got))
	}
	if called {
		t.Error("geocoder must not be consulted for a blank query")
	}
}

func TestGeocodingService_ReverseKeepsClickedCoordinate(t *testing.T) {
	snapped := domain.GeoPoint{Lat: 43.2630001, Lon: -2.9350001}
	geocoder := &mockGeocoder{
		reverseFn: func(ctx context.Context, point domain.GeoPoint) (*domain.PlaceCandidate, error) {
			return &domain.PlaceCandidate{
				ID:          "r1",
				DisplayName: "Plaza Moyua, Bilbao",
				Location:    snapped,
			}, nil
		},
	}

	svc := usecases.NewGeocodingService(geocoder, nil, nil)
	clicked := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	candidate := svc.Reverse(context.Background(), clicked)

	if candidate == nil {
		t.Fatal("expected a candidate")
	}
	if candidate.Location != clicked {
		t.Errorf("expected the clicked coordinate %+v, got %+v", clicked, candidate.Location)
	}
}

func TestGeocodingService_ReverseFailureReturnsNil(t *testing.T) {
	geocoder := &mockGeocoder{
		reverseFn: func(ctx context.Context, point domain.GeoPoint) (*domain.PlaceCandidate, error) {
			return nil, errors.New("upstream 500")
		},
	}

	svc := usecases.NewGeocodingService(geocoder, nil, nil)
	if got := svc.Reverse(context.Background(), domain.GeoPoint{Lat: 43.263, Lon: -2.935}); got != nil {
		t.Errorf("expected nil on failure, got %+v", got)
	}
}

func TestGeocodingService_ReverseInvalidPoint(t *testing.T) {
	svc := usecases.NewGeocodingService(&mockGeocoder{}, nil, nil)
	if got := svc.Reverse(context.Background(), domain.GeoPoint{Lat: 91, Lon: 0}); got != nil {
		t.Errorf("expected nil for invalid coordinate, got %+v", got)
	}
}

func TestGeocodingService_SearchCacheReadThrough(t *testing.T) {
	calls := 0
	geocoder := &mockGeocoder{
		searchFn: func(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error) {
			calls++
			return []domain.PlaceCandidate{{ID: "1", DisplayName: "Bilbao"}}, nil
		},
	}

	cache := newMockCache()
	svc := usecases.NewGeocodingService(geocoder, cache, nil)

	svc.SearchByText(context.Background(), "Bilbao")
	svc.SearchByText(context.Background(), "bilbao") // same key, lowercased

	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}
