// Package overpass queries the Overpass API for tagged OpenStreetMap
// features around a coordinate. It is the primary tier of POI discovery.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/pkg/metrics"
)

// interestTags are the feature classes worth surfacing, most specific
// first. The order decides which tag wins when a feature carries several.
var interestTags = []struct {
	key, value, label string
}{
	{"tourism", "", ""},
	{"amenity", "restaurant", "Restaurant"},
	{"amenity", "cafe", "Cafe"},
	{"historic", "", "Historic Site"},
	{"leisure", "park", "Park"},
}

type element struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center,omitempty"`
	Tags map[string]string `json:"tags"`
}

type response struct {
	Elements []element `json:"elements"`
}

// Client talks to an Overpass interpreter endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// New creates an Overpass client. endpoint is the full interpreter URL.
func New(endpoint, userAgent string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "overpass" }

// Discover returns tagged features within radiusMeters of origin, capped
// at limit. Features with neither a name nor a recognizable category tag
// are dropped.
func (c *Client) Discover(ctx context.Context, origin domain.GeoPoint, radiusMeters float64, limit int) ([]domain.PointOfInterest, error) {
	start := time.Now()
	resp, err := c.query(ctx, buildQuery(origin, radiusMeters))
	metrics.ProviderRequestDuration.WithLabelValues("overpass").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("overpass").Inc()
		return nil, err
	}

	pois := make([]domain.PointOfInterest, 0, limit)
	for _, el := range resp.Elements {
		lat, lon := el.Lat, el.Lon
		if el.Type == "way" {
			if el.Center == nil {
				continue
			}
			lat, lon = el.Center.Lat, el.Center.Lon
		}

		category, tagged := categoryOf(el.Tags)
		name := el.Tags["name"]
		if name == "" && !tagged {
			continue
		}
		if name == "" {
			name = category
		}
		if name == "" {
			name = fmt.Sprintf("Place at %.4f, %.4f", lat, lon)
		}
		if category == "" {
			category = "Attraction"
		}

		pois = append(pois, domain.PointOfInterest{
			ID:       fmt.Sprintf("osm-%s-%d", el.Type, el.ID),
			Name:     name,
			Category: category,
			Location: domain.GeoPoint{Lat: lat, Lon: lon},
		})
		if len(pois) >= limit {
			break
		}
	}

	return pois, nil
}

func (c *Client) query(ctx context.Context, q string) (*response, error) {
	form := url.Values{}
	form.Set("data", q)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read overpass response: %w", err)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse overpass response: %w", err)
	}
	return &out, nil
}

// buildQuery asks for nodes and ways carrying any of the interest tags
// within the radius. "out center" gives ways a usable coordinate.
func buildQuery(origin domain.GeoPoint, radiusMeters float64) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, t := range interestTags {
		sel := fmt.Sprintf("[%q]", t.key)
		if t.value != "" {
			sel = fmt.Sprintf("[%q=%q]", t.key, t.value)
		}
		fmt.Fprintf(&b, "node%s(around:%.0f,%f,%f);", sel, radiusMeters, origin.Lat, origin.Lon)
		fmt.Fprintf(&b, "way%s(around:%.0f,%f,%f);", sel, radiusMeters, origin.Lat, origin.Lon)
	}
	b.WriteString(");out center 30;")
	return b.String()
}

// categoryOf derives a category from the most specific matching tag.
// tagged reports whether any interest tag matched at all.
func categoryOf(tags map[string]string) (category string, tagged bool) {
	for _, t := range interestTags {
		v, ok := tags[t.key]
		if !ok {
			continue
		}
		if t.value != "" && v != t.value {
			continue
		}
		if t.label != "" {
			return t.label, true
		}
		return titleCase(v), true
	}
	return "", false
}

// titleCase turns an OSM tag value like "theme_park" into "Theme Park".
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
