package usecases

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/pkg/geospatial"
)

// MetaFunc synthesizes presentation metadata for a point of interest.
// Pluggable so tests can inject deterministic values.
type MetaFunc func() domain.PlaceMeta

var crowdLevels = []string{"Less crowded", "Moderate", "Busy"}

var bestTimes = []string{"Morning", "Afternoon", "Evening"}

// RandomMeta returns a MetaFunc that samples a rating uniformly in
// [3.0, 5.0] and draws crowd and best-time labels from the fixed lists.
func RandomMeta(rng *rand.Rand) MetaFunc {
	var mu sync.Mutex
	return func() domain.PlaceMeta {
		mu.Lock()
		defer mu.Unlock()
		return domain.PlaceMeta{
			ImageURL:   "https://placehold.co/400x300",
			Rating:     3.0 + rng.Float64()*2.0,
			CrowdLevel: crowdLevels[rng.Intn(len(crowdLevels))],
			BestTime:   bestTimes[rng.Intn(len(bestTimes))],
		}
	}
}

// syntheticPlaces is the fixed ordered list the terminal tier assigns from,
// so the panel is always populated even when every live source is down.
var syntheticPlaces = []struct {
	Name, Category, Description string
}{
	{"Central Park", "Nature", "A green retreat in the middle of the city"},
	{"Museum of Art", "Cultural", "Collections spanning classic and modern works"},
	{"Historic Tower", "Historical", "A landmark with views over the old town"},
	{"Botanical Garden", "Nature", "Seasonal plantings and quiet walking paths"},
	{"City Square", "Entertainment", "Cafes, street performers and open-air markets"},
}

// SyntheticSource is the terminal discovery tier. It places exactly five
// points at random bearings and distances between 0.5 and 5 km from the
// origin using geodesic destination projection. It never fails.
type SyntheticSource struct {
	mu   sync.Mutex
	rng  *rand.Rand
	meta MetaFunc
}

// NewSyntheticSource creates the terminal tier. rng drives point placement
// and may be seeded for deterministic tests.
func NewSyntheticSource(rng *rand.Rand, meta MetaFunc) *SyntheticSource {
	return &SyntheticSource{rng: rng, meta: meta}
}

func (s *SyntheticSource) Name() string { return "synthetic" }

// Discover synthesizes the fixed five places around origin. radiusMeters
// and limit are ignored: the tier always returns exactly five points
// within 0.5-5 km.
func (s *SyntheticSource) Discover(_ context.Context, origin domain.GeoPoint, _ float64, _ int) ([]domain.PointOfInterest, error) {
	pois := make([]domain.PointOfInterest, 0, len(syntheticPlaces))
	for i, place := range syntheticPlaces {
		s.mu.Lock()
		bearing := s.rng.Float64() * 360
		distKm := 0.5 + s.rng.Float64()*4.5
		s.mu.Unlock()

		lat, lon := geospatial.Destination(origin.Lat, origin.Lon, bearing, distKm)

		poi := domain.PointOfInterest{
			ID:          fmt.Sprintf("synthetic-%d", i+1),
			Name:        place.Name,
			Category:    place.Category,
			Description: place.Description,
			Location:    domain.GeoPoint{Lat: lat, Lon: lon},
			DistanceKm:  distKm,
		}
		if s.meta != nil {
			poi.Meta = s.meta()
		}
		pois = append(pois, poi)
	}
	return pois, nil
}
