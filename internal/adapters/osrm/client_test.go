package osrm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lursoto/wayfarer/internal/adapters/osrm"
	"github.com/lursoto/wayfarer/internal/core/domain"
)

var (
	origin      = domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}
	destination = domain.GeoPoint{Lat: 37.8044, Lon: -122.2712}
)

func TestClient_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/route/v1/car/") {
			t.Errorf("expected the car profile in the path, got %s", r.URL.Path)
		}
		// OSRM takes lon,lat pairs
		if !strings.Contains(r.URL.Path, "-122.419400,37.774900") {
			t.Errorf("expected lon,lat coordinate order, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("overview") != "full" || q.Get("geometries") != "geojson" {
			t.Errorf("unexpected params: %v", q)
		}

		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"geometry": {"coordinates": [[-122.4194,37.7749],[-122.35,37.79],[-122.2712,37.8044]]},
				"duration": 1305.4,
				"distance": 19285.0
			}]
		}`))
	}))
	defer srv.Close()

	client := osrm.New(srv.URL, "test-agent", 5*time.Second)
	route, err := client.Route(context.Background(), origin, destination, domain.ModeDriving)
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	if len(route.Geometry) != 3 {
		t.Fatalf("expected 3 geometry points, got %d", len(route.Geometry))
	}
	// GeoJSON [lon,lat] flipped into lat/lon points
	if route.Geometry[0].Lat != 37.7749 || route.Geometry[0].Lon != -122.4194 {
		t.Errorf("unexpected first point: %+v", route.Geometry[0])
	}
	if route.DistanceKm != 19.3 {
		t.Errorf("expected 19.3 km, got %.1f", route.DistanceKm)
	}
	if route.DurationMinutes != 22 {
		t.Errorf("expected 22 minutes (1305s rounded), got %d", route.DurationMinutes)
	}
	if len(route.Steps) != 1 || route.Steps[0].DistanceMeters != 19285 {
		t.Errorf("expected a single summary step, got %+v", route.Steps)
	}
	if route.Fallback {
		t.Error("provider routes are not fallbacks")
	}
}

func TestClient_RouteProfiles(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"coordinates":[[-2.935,43.263],[-2.934,43.264]]},"duration":60,"distance":100}]}`))
	}))
	defer srv.Close()

	client := osrm.New(srv.URL, "test-agent", 5*time.Second)

	cases := []struct {
		mode    domain.TransportMode
		profile string
	}{
		{domain.ModeDriving, "/route/v1/car/"},
		{domain.ModeCycling, "/route/v1/bike/"},
		{domain.ModeWalking, "/route/v1/foot/"},
	}
	for _, c := range cases {
		if _, err := client.Route(context.Background(), origin, destination, c.mode); err != nil {
			t.Fatalf("%s: %v", c.mode, err)
		}
		if !strings.HasPrefix(gotPath, c.profile) {
			t.Errorf("%s: expected path prefix %s, got %s", c.mode, c.profile, gotPath)
		}
	}
}

func TestClient_RouteNotOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	client := osrm.New(srv.URL, "test-agent", 5*time.Second)
	if _, err := client.Route(context.Background(), origin, destination, domain.ModeDriving); err == nil {
		t.Error("expected an error for a NoRoute response")
	}
}

func TestClient_RouteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := osrm.New(srv.URL, "test-agent", 5*time.Second)
	if _, err := client.Route(context.Background(), origin, destination, domain.ModeWalking); err == nil {
		t.Error("expected an error on 502")
	}
}

func TestClient_RouteDegenerateGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"coordinates":[[-2.935,43.263]]},"duration":0,"distance":0}]}`))
	}))
	defer srv.Close()

	client := osrm.New(srv.URL, "test-agent", 5*time.Second)
	if _, err := client.Route(context.Background(), origin, destination, domain.ModeDriving); err == nil {
		t.Error("expected an error for a single-point geometry")
	}
}
