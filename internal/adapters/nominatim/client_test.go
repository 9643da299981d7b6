package nominatim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lursoto/wayfarer/internal/adapters/nominatim"
	"github.com/lursoto/wayfarer/internal/core/domain"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected /search, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "bilbao" || q.Get("format") != "json" {
			t.Errorf("unexpected params: %v", q)
		}
		if q.Get("limit") != "5" || q.Get("addressdetails") != "1" {
			t.Errorf("unexpected params: %v", q)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("Nominatim requires a User-Agent")
		}

		w.Write([]byte(`[
			{"place_id":101,"lat":"43.2630","lon":"-2.9350","display_name":"Bilbao, Biscay, Spain","type":"city","class":"place","address":{"city":"Bilbao","country":"Spain"}},
			{"place_id":102,"lat":"not-a-number","lon":"-2.9","display_name":"Broken"},
			{"place_id":103,"lat":"43.3000","lon":"-2.9900","display_name":"Bilbao Airport","type":"aerodrome"}
		]`))
	}))
	defer srv.Close()

	client := nominatim.New(srv.URL, "test-agent", 5*time.Second)
	candidates, err := client.Search(context.Background(), "bilbao", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	// Record with unparseable coordinates is skipped.
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != "101" || candidates[0].Location.Lat != 43.263 {
		t.Errorf("unexpected first candidate: %+v", candidates[0])
	}
	if candidates[0].Address["city"] != "Bilbao" {
		t.Errorf("expected address details, got %v", candidates[0].Address)
	}
}

func TestClient_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("expected /reverse, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"place_id":201,"lat":"43.262999","lon":"-2.935001","display_name":"Plaza Moyua, Bilbao, Spain","type":"square"}`))
	}))
	defer srv.Close()

	client := nominatim.New(srv.URL, "test-agent", 5*time.Second)
	point := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	candidate, err := client.Reverse(context.Background(), point)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if candidate.DisplayName != "Plaza Moyua, Bilbao, Spain" {
		t.Errorf("unexpected candidate: %+v", candidate)
	}
	// The candidate carries the queried coordinate, not the snapped one.
	if candidate.Location != point {
		t.Errorf("expected %+v, got %+v", point, candidate.Location)
	}
}

func TestClient_ReverseNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	client := nominatim.New(srv.URL, "test-agent", 5*time.Second)
	if _, err := client.Reverse(context.Background(), domain.GeoPoint{Lat: 0.001, Lon: 0.001}); err == nil {
		t.Error("expected an error for an empty result")
	}
}

func TestClient_SearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := nominatim.New(srv.URL, "test-agent", 5*time.Second)
	if _, err := client.Search(context.Background(), "x", 5); err == nil {
		t.Error("expected an error on 503")
	}
}

func TestAttractionSource_Discover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "tourist attraction" {
			t.Errorf("expected tourist attraction query, got %q", q.Get("q"))
		}
		if q.Get("bounded") != "1" {
			t.Error("expected a bounded search")
		}
		if q.Get("viewbox") == "" {
			t.Error("expected a viewbox")
		}

		w.Write([]byte(`[
			{"place_id":301,"lat":"43.2687","lon":"-2.9340","display_name":"Guggenheim Museum, Abando, Bilbao, Spain","type":"museum"},
			{"place_id":302,"lat":"43.2564","lon":"-2.9236","display_name":"Casco Viejo, Bilbao, Spain","type":""}
		]`))
	}))
	defer srv.Close()

	src := nominatim.NewAttractionSource(nominatim.New(srv.URL, "test-agent", 5*time.Second))
	if src.Name() != "nominatim" {
		t.Errorf("unexpected source name %q", src.Name())
	}

	pois, err := src.Discover(context.Background(), domain.GeoPoint{Lat: 43.263, Lon: -2.935}, 5000, 10)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pois) != 2 {
		t.Fatalf("expected 2 POIs, got %d", len(pois))
	}
	// Name is the first comma-delimited segment of the display name.
	if pois[0].Name != "Guggenheim Museum" {
		t.Errorf("expected short name, got %q", pois[0].Name)
	}
	if pois[0].Category != "Museum" {
		t.Errorf("expected Museum, got %q", pois[0].Category)
	}
	// Untyped results keep the generic category.
	if pois[1].Category != "Tourist Attraction" {
		t.Errorf("expected Tourist Attraction, got %q", pois[1].Category)
	}
}
