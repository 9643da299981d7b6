// Package osrm wraps an OSRM routing instance.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/pkg/metrics"
)

type osrmRoute struct {
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Duration float64 `json:"duration"` // seconds
	Distance float64 `json:"distance"` // meters
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

// Client requests full-geometry routes from OSRM.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// New creates an OSRM client. baseURL is the instance root, e.g.
// "https://router.project-osrm.org".
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Route requests a route between two points. The transport mode is mapped
// to OSRM's profile vocabulary (driving→car, cycling→bike, walking→foot).
// A non-Ok response code or an empty route list is an error; the caller
// decides how to degrade.
func (c *Client) Route(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TransportMode) (*domain.Route, error) {
	reqURL := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, mode.Profile(),
		origin.Lon, origin.Lat,
		destination.Lon, destination.Lat,
	)

	start := time.Now()
	out, err := c.fetch(ctx, reqURL)
	metrics.ProviderRequestDuration.WithLabelValues("osrm").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("osrm").Inc()
		return nil, err
	}

	if out.Code != "Ok" || len(out.Routes) == 0 {
		metrics.ProviderErrors.WithLabelValues("osrm").Inc()
		return nil, fmt.Errorf("osrm returned code %q with %d routes", out.Code, len(out.Routes))
	}

	best := out.Routes[0]
	geometry := make([]domain.GeoPoint, 0, len(best.Geometry.Coordinates))
	for _, coord := range best.Geometry.Coordinates {
		if len(coord) < 2 {
			continue
		}
		geometry = append(geometry, domain.GeoPoint{Lat: coord[1], Lon: coord[0]})
	}
	if len(geometry) < 2 {
		return nil, fmt.Errorf("osrm route has %d usable points", len(geometry))
	}

	return &domain.Route{
		Geometry:        geometry,
		DistanceKm:      math.Round(best.Distance/1000*10) / 10,
		DurationMinutes: int(math.Round(best.Duration / 60)),
		Steps: []domain.RouteStep{
			{
				Instruction:    "Follow the route to your destination",
				DistanceMeters: int(math.Round(best.Distance)),
			},
		},
	}, nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) (*osrmResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read osrm response: %w", err)
	}

	var out osrmResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse osrm response: %w", err)
	}
	return &out, nil
}
