// Package geo implements the Geocoder port against the Google Maps web
// service. The dispatch flows only need two calls: reverse geocoding a
// store location into a postal string, and resolving a stored place ID.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"
	defaultTimeout = 5 * time.Second
)

// GoogleGeocoder resolves addresses through the Google Maps geocoding and
// place details endpoints. Callers treat failures as non-fatal: the accept
// flow falls back to raw coordinates when geocoding is unavailable.
type GoogleGeocoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Option configures a GoogleGeocoder.
type Option func(*GoogleGeocoder)

// WithBaseURL overrides the service base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(g *GoogleGeocoder) {
		g.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *GoogleGeocoder) {
		g.client = client
	}
}

// NewGoogleGeocoder creates a geocoder authenticated with the given API key.
func NewGoogleGeocoder(apiKey string, opts ...Option) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errs.NewValueIsRequiredError("apiKey")
	}

	g := &GoogleGeocoder{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// geocodeResponse is the shared envelope of the geocode and place endpoints.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Result struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
	ErrorMessage string `json:"error_message"`
}

// ReverseGeocode returns the formatted address for a point.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (string, error) {
	if err := point.Validate(); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", point.Lat(), point.Lng()))
	params.Set("key", g.apiKey)

	var payload geocodeResponse
	if err := g.get(ctx, "/maps/api/geocode/json", params, &payload); err != nil {
		return "", err
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		return "", fmt.Errorf("reverse geocode failed: %s %s", payload.Status, payload.ErrorMessage)
	}

	return payload.Results[0].FormattedAddress, nil
}

// PlaceDetails returns the formatted address and coordinates of a provider
// place ID.
func (g *GoogleGeocoder) PlaceDetails(ctx context.Context, placeID string) (string, kernel.GeoPoint, error) {
	if placeID == "" {
		return "", kernel.GeoPoint{}, errs.NewValueIsRequiredError("placeID")
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "formatted_address,geometry")
	params.Set("key", g.apiKey)

	var payload geocodeResponse
	if err := g.get(ctx, "/maps/api/place/details/json", params, &payload); err != nil {
		return "", kernel.GeoPoint{}, err
	}

	if payload.Status != "OK" {
		return "", kernel.GeoPoint{}, fmt.Errorf("place details failed: %s %s",
			payload.Status, payload.ErrorMessage)
	}

	point, err := kernel.NewGeoPoint(
		payload.Result.Geometry.Location.Lat,
		payload.Result.Geometry.Location.Lng,
	)
	if err != nil {
		return "", kernel.GeoPoint{}, err
	}

	return payload.Result.FormattedAddress, point, nil
}

// get performs a request against the service and decodes the json envelope.
func (g *GoogleGeocoder) get(ctx context.Context, path string, params url.Values, out *geocodeResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
