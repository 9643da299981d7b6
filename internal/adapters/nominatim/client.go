// Package nominatim wraps the OpenStreetMap Nominatim API for forward
// and reverse geocoding, plus a bounded attraction search used as the
// secondary tier of POI discovery.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/pkg/geospatial"
	"github.com/lursoto/wayfarer/internal/pkg/metrics"
)

// result is a single Nominatim search record. Coordinates arrive as strings.
type result struct {
	PlaceID     int64             `json:"place_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"`
	Class       string            `json:"class"`
	Address     map[string]string `json:"address"`
}

// Client talks to a Nominatim instance. Nominatim requires a User-Agent
// identifying the application.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// New creates a Nominatim client. baseURL is the instance root without a
// trailing slash, e.g. "https://nominatim.openstreetmap.org".
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search performs forward geocoding for a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.PlaceCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")

	var results []result
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}

	candidates := make([]domain.PlaceCandidate, 0, len(results))
	for _, r := range results {
		pt, ok := r.point()
		if !ok {
			continue
		}
		candidates = append(candidates, domain.PlaceCandidate{
			ID:          strconv.FormatInt(r.PlaceID, 10),
			DisplayName: r.DisplayName,
			Location:    pt,
			Type:        r.Type,
			Address:     r.Address,
		})
	}
	return candidates, nil
}

// Reverse resolves a coordinate to the place containing it.
func (c *Client) Reverse(ctx context.Context, point domain.GeoPoint) (*domain.PlaceCandidate, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", point.Lat))
	params.Set("lon", fmt.Sprintf("%.6f", point.Lon))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var r result
	if err := c.get(ctx, "/reverse", params, &r); err != nil {
		return nil, err
	}
	if r.DisplayName == "" {
		return nil, fmt.Errorf("no place at %.6f, %.6f", point.Lat, point.Lon)
	}

	return &domain.PlaceCandidate{
		ID:          strconv.FormatInt(r.PlaceID, 10),
		DisplayName: r.DisplayName,
		Location:    point,
		Type:        r.Type,
		Address:     r.Address,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	start := time.Now()
	err := c.doGet(ctx, path, params, out)
	metrics.ProviderRequestDuration.WithLabelValues("nominatim").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("nominatim").Inc()
	}
	return err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read nominatim response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse nominatim response: %w", err)
	}
	return nil
}

func (r result) point() (domain.GeoPoint, bool) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return domain.GeoPoint{}, false
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return domain.GeoPoint{}, false
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, true
}

// AttractionSource is the secondary discovery tier: a bounded free-text
// search for tourist attractions around the origin.
type AttractionSource struct {
	client *Client
}

// NewAttractionSource wraps a Nominatim client as a POI source.
func NewAttractionSource(client *Client) *AttractionSource {
	return &AttractionSource{client: client}
}

func (s *AttractionSource) Name() string { return "nominatim" }

// Discover searches for "tourist attraction" inside a bounding box of
// radiusMeters around origin, capped at limit.
func (s *AttractionSource) Discover(ctx context.Context, origin domain.GeoPoint, radiusMeters float64, limit int) ([]domain.PointOfInterest, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(origin.Lat, origin.Lon, radiusMeters)

	params := url.Values{}
	params.Set("q", "tourist attraction")
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("bounded", "1")
	// viewbox is x1,y1,x2,y2 (lon,lat pairs)
	params.Set("viewbox", fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", minLon, maxLat, maxLon, minLat))

	var results []result
	if err := s.client.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}

	pois := make([]domain.PointOfInterest, 0, len(results))
	for _, r := range results {
		pt, ok := r.point()
		if !ok {
			continue
		}

		name := r.DisplayName
		if i := strings.Index(name, ","); i >= 0 {
			name = name[:i]
		}

		category := "Tourist Attraction"
		if r.Type != "" {
			category = titleCase(r.Type)
		}

		pois = append(pois, domain.PointOfInterest{
			ID:       strconv.FormatInt(r.PlaceID, 10),
			Name:     name,
			Category: category,
			Location: pt,
		})
		if len(pois) >= limit {
			break
		}
	}
	return pois, nil
}

func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
