package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/pkg/metrics"
)

// NominatimGeocoder implements ports.Geocoder against a Nominatim-compatible
// search endpoint. One attempt per lookup; callers own any retry policy.
type NominatimGeocoder struct {
	baseURL     string
	defaultCity string
	userAgent   string
	client      *http.Client
}

// NewNominatimGeocoder creates a geocoder for the given search endpoint.
func NewNominatimGeocoder(baseURL, defaultCity, userAgent string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:     baseURL,
		defaultCity: defaultCity,
		userAgent:   userAgent,
		client:      &http.Client{Timeout: timeout},
	}
}

// candidate mirrors the relevant slice of a Nominatim search result.
// Nominatim encodes coordinates as strings.
type candidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a street address to a coordinate. The provider returns
// candidates ordered by relevance; the first one wins. An empty candidate
// list maps to ErrAddressNotFound, transport and decode failures to
// ErrGeocoderUnavailable.
func (g *NominatimGeocoder) Geocode(ctx context.Context, street, houseNumber, city string) (*domain.GeoPoint, error) {
	start := time.Now()
	point, err := g.geocode(ctx, street, houseNumber, city)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.GeocodeRequests.WithLabelValues("ok").Inc()
	case err == domain.ErrAddressNotFound:
		metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
	default:
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
	}
	return point, err
}

func (g *NominatimGeocoder) geocode(ctx context.Context, street, houseNumber, city string) (*domain.GeoPoint, error) {
	if city == "" {
		city = g.defaultCity
	}

	q := url.Values{}
	q.Set("street", strings.TrimSpace(houseNumber+" "+street))
	if city != "" {
		q.Set("city", city)
	}
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrGeocoderUnavailable, err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept-Language", "es")

	resp, err := g.client.Do(req)
	if err != nil {
		// Timeouts and cancellations count as provider unavailability; the
		// context error stays observable through the chain.
		return nil, fmt.Errorf("%w: %w", domain.ErrGeocoderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrGeocoderUnavailable, resp.StatusCode)
	}

	var candidates []candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrGeocoderUnavailable, err)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(candidates[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad latitude %q", domain.ErrGeocoderUnavailable, candidates[0].Lat)
	}
	lon, err := strconv.ParseFloat(candidates[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad longitude %q", domain.ErrGeocoderUnavailable, candidates[0].Lon)
	}

	return &domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
