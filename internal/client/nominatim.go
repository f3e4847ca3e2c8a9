package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"civic-issues-api/internal/models"
)

// headerRoundTripper sets fixed headers on every outgoing request.
type headerRoundTripper struct {
	transport http.RoundTripper
	headers   map[string]string
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.transport.RoundTrip(req)
}

// NominatimClient queries a Nominatim-compatible reverse geocoding service.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimClient creates a client identifying itself with userAgent, as the
// Nominatim usage policy requires, and asking for English results.
func NewNominatimClient(baseURL, userAgent string) *NominatimClient {
	return &NominatimClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &headerRoundTripper{
				transport: http.DefaultTransport,
				headers: map[string]string{
					"User-Agent":      userAgent,
					"Accept-Language": "en",
				},
			},
		},
	}
}

// Reverse looks up the address at lat/lng.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (*models.ReverseGeocodeResult, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("client: failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("client: geocoder returned status %d", resp.StatusCode)
	}

	var result models.ReverseGeocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("client: decoding response: %w", err)
	}

	return &result, nil
}
