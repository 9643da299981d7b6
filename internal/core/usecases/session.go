package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/ports"
	"github.com/lursoto/wayfarer/internal/pkg/metrics"
)

// ErrNoDestination is returned when directions are requested without a destination.
var ErrNoDestination = errors.New("no destination selected")

// ErrNoLocation is returned when directions are requested before the user location resolved.
var ErrNoLocation = errors.New("user location not resolved")

// defaultZoom is the map zoom applied when the view recenters on a point.
const defaultZoom = 14

// firstRouteAchievement is awarded once per session, on the first route
// that resolves (a synthesized fallback counts).
var firstRouteAchievement = domain.Achievement{
	Title:       "Trailblazer",
	Description: "You planned your first route",
	Points:      50,
}

// ViewState is what the map client needs to render: where to look and
// which panels are open.
type ViewState struct {
	Center       domain.GeoPoint `json:"center"`
	Zoom         int             `json:"zoom"`
	PanelVisible bool            `json:"panel_visible"`
}

// SessionState is a full snapshot of a trip session.
type SessionState struct {
	ID           string                   `json:"id"`
	Mode         domain.TransportMode     `json:"mode"`
	UserLocation domain.UserLocation      `json:"user_location"`
	Destination  *domain.PlaceCandidate   `json:"destination,omitempty"`
	Route        *domain.Route            `json:"route,omitempty"`
	POIs         []domain.PointOfInterest `json:"pois,omitempty"`
	View         ViewState                `json:"view"`
}

// TripSession owns the composed state of one travel-assistant session and
// wires the location, discovery, geocoding and routing services together.
// All mutation goes through its methods under a single mutex; state is
// always replaced wholesale, never merged. Asynchronous completions are
// fenced with a request epoch: a completion tagged with a stale epoch is
// dropped rather than overwriting fresher state.
type TripSession struct {
	ID string

	mu           sync.Mutex
	mode         domain.TransportMode
	userLoc      domain.UserLocation
	destination  *domain.PlaceCandidate
	route        *domain.Route
	pois         []domain.PointOfInterest
	view         ViewState
	awarded      bool
	pendingAuto  bool
	autoConsumed bool
	epoch        uint64

	location    *LocationService
	discovery   *DiscoveryService
	routes      *RouteService
	events      ports.EventPublisher
	settleDelay time.Duration
}

// ResolveLocation feeds a platform geolocation outcome into the session.
// Both success and failure resolve to a coordinate (the fallback on
// failure) and both trigger POI discovery around that coordinate. When no
// destination is selected yet, the view recenters on the resolved point.
func (s *TripSession) ResolveLocation(report LocationReport) domain.UserLocation {
	loc := s.location.Resolve(report)

	s.mu.Lock()
	s.userLoc = loc
	if s.destination == nil && loc.Location != nil {
		s.view.Center = *loc.Location
		s.view.Zoom = defaultZoom
	}
	origin := *loc.Location
	s.triggerDiscoveryLocked(origin)

	// An externally supplied initial destination plus a resolved location
	// auto-requests directions once, after a settling delay.
	auto := s.pendingAuto && !s.autoConsumed
	if auto {
		s.pendingAuto = false
		s.autoConsumed = true
	}
	s.mu.Unlock()

	if auto {
		time.AfterFunc(s.settleDelay, func() {
			if _, err := s.RequestDirections(context.Background()); err != nil {
				slog.Warn("auto directions request failed", "session", s.ID, "error", err)
			}
		})
	}

	s.publishState()
	return loc
}

// SelectDestination makes place the current destination: any existing
// route is cleared immediately, the view recenters, and POI discovery is
// triggered for the destination's coordinate.
func (s *TripSession) SelectDestination(place domain.PlaceCandidate) {
	s.mu.Lock()
	p := place
	s.destination = &p
	s.route = nil
	s.view.Center = place.Location
	s.view.Zoom = defaultZoom
	s.triggerDiscoveryLocked(place.Location)
	s.mu.Unlock()

	s.publishState()
}

// SetInitialDestination selects an externally supplied destination and
// arms the one-time automatic directions request, which fires once a user
// location is also resolved. Re-arming after consumption has no effect.
func (s *TripSession) SetInitialDestination(place domain.PlaceCandidate) {
	s.SelectDestination(place)

	s.mu.Lock()
	hasLocation := s.userLoc.Location != nil
	fire := false
	if !s.autoConsumed {
		if hasLocation {
			s.autoConsumed = true
			fire = true
		} else {
			s.pendingAuto = true
		}
	}
	s.mu.Unlock()

	if fire {
		time.AfterFunc(s.settleDelay, func() {
			if _, err := s.RequestDirections(context.Background()); err != nil {
				slog.Warn("auto directions request failed", "session", s.ID, "error", err)
			}
		})
	}
}

// RequestDirections resolves a route from the user location to the
// current destination. Resolution always succeeds (the service degrades to
// a straight-line synthesis), so the session transitions to the
// route-resolved state unless the inputs changed mid-flight.
func (s *TripSession) RequestDirections(ctx context.Context) (*domain.Route, error) {
	s.mu.Lock()
	if s.userLoc.Location == nil {
		s.mu.Unlock()
		return nil, ErrNoLocation
	}
	if s.destination == nil {
		s.mu.Unlock()
		return nil, ErrNoDestination
	}
	origin := *s.userLoc.Location
	dest := *s.destination
	mode := s.mode
	epoch := s.epoch
	s.mu.Unlock()

	route := s.routes.Resolve(ctx, origin, dest.Location, dest.DisplayName, mode)

	s.mu.Lock()
	if epoch != s.epoch {
		// Destination changed while this request was in flight; deliver
		// the route to the caller but leave the newer state alone.
		s.mu.Unlock()
		return route, nil
	}
	s.route = route
	award := !s.awarded
	s.awarded = true
	s.mu.Unlock()

	if award {
		metrics.AchievementsAwarded.Inc()
		if s.events != nil {
			a := firstRouteAchievement
			if err := s.events.PublishAchievement(ctx, s.ID, &a); err != nil {
				slog.Warn("achievement publish failed", "session", s.ID, "error", err)
			}
		}
	}

	s.publishState()
	return route, nil
}

// SetMode changes the transport mode. An existing route is not
// recomputed; the client must request directions again.
func (s *TripSession) SetMode(mode domain.TransportMode) error {
	if !mode.Valid() {
		return errors.New("unknown transport mode: " + string(mode))
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	s.publishState()
	return nil
}

// ClearDestination drops the destination and any route, returning the
// session to its initial state. The view recenters on the user location
// when one is known.
func (s *TripSession) ClearDestination() {
	s.mu.Lock()
	s.destination = nil
	s.route = nil
	s.view.PanelVisible = false
	s.epoch++ // fence out any in-flight completions for the old destination
	if s.userLoc.Location != nil {
		s.view.Center = *s.userLoc.Location
	}
	s.mu.Unlock()

	s.publishState()
}

// ClearRoute removes the resolved route but keeps the destination.
func (s *TripSession) ClearRoute() {
	s.mu.Lock()
	s.route = nil
	s.mu.Unlock()

	s.publishState()
}

// Snapshot returns a copy of the full session state.
func (s *TripSession) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *TripSession) snapshotLocked() SessionState {
	state := SessionState{
		ID:           s.ID,
		Mode:         s.mode,
		UserLocation: s.userLoc,
		Destination:  s.destination,
		Route:        s.route,
		View:         s.view,
	}
	if len(s.pois) > 0 {
		state.POIs = make([]domain.PointOfInterest, len(s.pois))
		copy(state.POIs, s.pois)
	}
	return state
}

// triggerDiscoveryLocked starts an asynchronous POI discovery for origin.
// Caller holds s.mu. The completion only lands if no newer trigger has
// bumped the epoch in the meantime (last write would otherwise win).
func (s *TripSession) triggerDiscoveryLocked(origin domain.GeoPoint) {
	s.epoch++
	epoch := s.epoch

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pois := s.discovery.Discover(ctx, origin)

		s.mu.Lock()
		if epoch != s.epoch {
			s.mu.Unlock()
			return
		}
		s.pois = pois
		s.view.PanelVisible = true
		s.mu.Unlock()

		s.publishState()
	}()
}

// publishState broadcasts a session snapshot to the event bus. Best
// effort: relay consumers are purely presentational.
func (s *TripSession) publishState() {
	if s.events == nil {
		return
	}

	state := s.Snapshot()
	data, err := json.Marshal(state)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.events.PublishSessionState(ctx, s.ID, data); err != nil {
		slog.Debug("session state publish failed", "session", s.ID, "error", err)
	}
}

// SessionManager creates and tracks trip sessions in memory. Sessions are
// not persisted; a restart starts everyone fresh.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*TripSession

	location    *LocationService
	discovery   *DiscoveryService
	routes      *RouteService
	events      ports.EventPublisher
	settleDelay time.Duration
}

// NewSessionManager creates a SessionManager wiring each new session to
// the given services. settleDelay spaces the one-time automatic
// directions request after the view stabilizes.
func NewSessionManager(location *LocationService, discovery *DiscoveryService,
	routes *RouteService, events ports.EventPublisher, settleDelay time.Duration) *SessionManager {
	if settleDelay <= 0 {
		settleDelay = time.Second
	}
	return &SessionManager{
		sessions:    make(map[string]*TripSession),
		location:    location,
		discovery:   discovery,
		routes:      routes,
		events:      events,
		settleDelay: settleDelay,
	}
}

// Create starts a new session in the no-destination state.
func (m *SessionManager) Create() *TripSession {
	s := &TripSession{
		ID:          uuid.NewString(),
		mode:        domain.ModeDriving,
		location:    m.location,
		discovery:   m.discovery,
		routes:      m.routes,
		events:      m.events,
		settleDelay: m.settleDelay,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	metrics.SessionsActive.Inc()
	return s
}

// Get returns a session by ID, or nil when unknown.
func (m *SessionManager) Get(id string) *TripSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Delete tears a session down. Handler registrations die with the
// session; any in-flight completions are fenced out by its absence.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		metrics.SessionsActive.Dec()
	}
}
