package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultReverseURL is the public OSM reverse geocoding endpoint. It needs no
// API key but allows roughly one request per second.
const DefaultReverseURL = "https://nominatim.openstreetmap.org/reverse"

// DefaultUserAgent identifies the client; Nominatim rejects requests without one.
const DefaultUserAgent = "statefinder/1.0"

// StateZoom asks Nominatim for state-level granularity.
const StateZoom = 8

// Client performs reverse geocoding lookups against a Nominatim compatible API.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient returns a Client with a traced HTTP transport. Empty arguments
// fall back to the public endpoint and the default user agent.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultReverseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ReverseURL builds the lookup URL for the given coordinates.
func (c *Client) ReverseURL(lat, lon float64) string {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("zoom", strconv.Itoa(StateZoom))
	params.Set("addressdetails", "1")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	return fmt.Sprintf("%s?%s", c.BaseURL, params.Encode())
}

// Reverse looks up the place at lat/lon. Non-2xx responses, transport
// failures and undecodable bodies are all reported as errors.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*ReverseResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReverseURL(lat, lon), nil)
	if err != nil {
		return nil, fmt.Errorf("build reverse geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var result ReverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode reverse geocode response: %w", err)
	}
	return &result, nil
}

// StatusError reports a non-success HTTP status from the geocoder.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reverse geocode failed: %s", e.Status)
}
