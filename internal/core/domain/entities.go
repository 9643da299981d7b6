package domain

// TransportMode selects the mode of travel used for route computation.
type TransportMode string

const (
	ModeDriving TransportMode = "driving"
	ModeCycling TransportMode = "cycling"
	ModeWalking TransportMode = "walking"
)

// Profile maps a transport mode to the routing service's profile vocabulary.
func (m TransportMode) Profile() string {
	switch m {
	case ModeCycling:
		return "bike"
	case ModeWalking:
		return "foot"
	default:
		return "car"
	}
}

// Valid reports whether the mode is one of the supported values.
func (m TransportMode) Valid() bool {
	switch m {
	case ModeDriving, ModeCycling, ModeWalking:
		return true
	}
	return false
}

// PlaceCandidate is a geocoded location candidate. Immutable once returned.
type PlaceCandidate struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Location    GeoPoint          `json:"location"`
	Type        string            `json:"type,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
}

// ShortName returns the first comma-delimited segment of the display name.
func (p PlaceCandidate) ShortName() string {
	for i := 0; i < len(p.DisplayName); i++ {
		if p.DisplayName[i] == ',' {
			return p.DisplayName[:i]
		}
	}
	return p.DisplayName
}

// PlaceMeta carries presentation-only metadata for a point of interest.
// None of it is authoritative; it exists so the UI never renders a bare pin.
type PlaceMeta struct {
	ImageURL   string  `json:"image_url,omitempty"`
	Rating     float64 `json:"rating"`
	CrowdLevel string  `json:"crowd_level"`
	BestTime   string  `json:"best_time"`
}

// PointOfInterest is a named place near a query origin.
type PointOfInterest struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Location    GeoPoint  `json:"location"`
	DistanceKm  float64   `json:"distance_km"`
	Meta        PlaceMeta `json:"meta"`
}

// RouteStep is a single textual instruction inside a route.
type RouteStep struct {
	Instruction    string `json:"instruction"`
	DistanceMeters int    `json:"distance_meters"`
}

// Route is a resolved path between two coordinates.
// Geometry always holds at least two points: origin first, destination last.
type Route struct {
	Geometry        []GeoPoint  `json:"geometry"`
	DistanceKm      float64     `json:"distance_km"`
	DurationMinutes int         `json:"duration_minutes"`
	Steps           []RouteStep `json:"steps"`
	Fallback        bool        `json:"fallback"`
}

// UserLocation is the acquired (or fallen-back) position of the user.
type UserLocation struct {
	Location *GeoPoint `json:"location"`
	Loading  bool      `json:"loading"`
	Error    string    `json:"error,omitempty"`
}

// LocationFailure classifies why a platform position fix was not obtained.
type LocationFailure string

const (
	LocationDenied      LocationFailure = "denied"
	LocationTimeout     LocationFailure = "timeout"
	LocationUnavailable LocationFailure = "unavailable"
)

// Achievement is a one-time reward event emitted on the first resolved route.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}
