package usecases

import (
	"time"

	"github.com/lursoto/wayfarer/internal/core/domain"
)

// AcquireTimeout is the budget the client is given to produce a position
// fix before it must report a timeout failure instead.
const AcquireTimeout = 10 * time.Second

// FallbackLocation is used whenever the platform cannot produce a fix,
// so the rest of the pipeline always has a coordinate to work with.
var FallbackLocation = domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}

// LocationReport is the outcome of a platform geolocation attempt as
// reported by the client: either a coordinate or a failure kind.
type LocationReport struct {
	Point   *domain.GeoPoint       `json:"point,omitempty"`
	Failure domain.LocationFailure `json:"failure,omitempty"`
}

// LocationService resolves geolocation reports into a usable user location.
type LocationService struct{}

// NewLocationService creates a new LocationService.
func NewLocationService() *LocationService {
	return &LocationService{}
}

// Resolve turns a geolocation report into a UserLocation. A failure maps
// to the fixed fallback coordinate plus a human-readable message naming
// the reason; downstream discovery proceeds either way. Idempotent, so a
// user-triggered retry simply resolves again.
func (s *LocationService) Resolve(report LocationReport) domain.UserLocation {
	if report.Point != nil && report.Point.Valid() {
		pt := *report.Point
		return domain.UserLocation{Location: &pt}
	}

	fallback := FallbackLocation
	return domain.UserLocation{
		Location: &fallback,
		Error:    failureMessage(report.Failure),
	}
}

func failureMessage(f domain.LocationFailure) string {
	switch f {
	case domain.LocationDenied:
		return "Location access was denied. Showing results near the default area instead."
	case domain.LocationTimeout:
		return "Locating you took too long. Showing results near the default area instead."
	default:
		return "Your location is unavailable. Showing results near the default area instead."
	}
}
