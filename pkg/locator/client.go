// Package locator drives a single find-my-state run: acquire a position,
// resolve it to a region, submit the report, and narrate every step through
// a State that renderers observe.
package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"statefinder/internal/models"
	"statefinder/internal/telemetry"
	"statefinder/pkg/location"
	"statefinder/pkg/position"
)

// Geocoder resolves coordinates to a place. *location.Client implements it.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*location.ReverseResponse, error)
}

// ErrNotSupported is returned when the client has no position provider.
var ErrNotSupported = errors.New("geolocation not supported")

// Client runs the find-state flow. Runs are independent: triggering one while
// another is in flight starts a second sequence that shares only the State.
type Client struct {
	Positions  position.Provider
	Geocoder   Geocoder
	BackendURL string
	UserAgent  string
	Options    position.Options
	HTTPClient *http.Client
	Renderer   Renderer
	Now        func() time.Time

	mu    sync.Mutex
	state State
}

func NewClient(positions position.Provider, geocoder Geocoder, backendURL, userAgent string) *Client {
	return &Client{
		Positions:  positions,
		Geocoder:   geocoder,
		BackendURL: backendURL,
		UserAgent:  userAgent,
		Options:    position.DefaultOptions,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Now:   time.Now,
		state: InitialState(),
	}
}

// State returns a snapshot of the current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == "" {
		return InitialState()
	}
	return c.state
}

// FindState runs the whole sequence once and returns the resulting state.
// Failures never escape; they end the run in PhaseError or PhaseFailedToSend.
func (c *Client) FindState(ctx context.Context) (final State) {
	runID := uuid.NewString()
	logger := slog.With("run_id", runID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected error while processing location", "panic", r)
			c.fail("Unexpected error while processing location.")
		}
		final = c.State()
		telemetry.RunsTotal.WithLabelValues(string(final.Phase)).Inc()
		logger.Info("Find state run finished", "phase", final.Phase, "status", final.Status)
	}()

	c.logLine("--- User triggered Find My State ---")
	c.setStatus(PhaseStarting, "Starting...")

	if c.Positions == nil {
		c.fail("Geolocation not supported by this device.")
		return
	}

	c.setStatus(PhaseRequestingPermission, "Requesting permission...")
	c.logLine("Requesting location permission from user...")

	coords, err := c.RequestLocation(ctx)
	if err != nil {
		code := position.CodeOf(err)
		logger.Warn("Geolocation error", "code", code.String(), "error", err)
		c.fail(FailureMessage(code))
		return
	}

	c.setStatus(PhaseLocationAcquired, "Location acquired")
	c.logLine("Coordinates:", coords.String())

	c.setStatus(PhaseResolvingState, "Resolving state...")
	geo := c.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)

	report := models.NewLocationReport(coords, geo.State, c.now(), c.UserAgent)

	c.setStatus(PhaseSendingToServer, "Sending to server...")
	result := c.SendToBackend(ctx, report)
	if !result.OK {
		logger.Warn("Failed to send payload to backend", "error", result.Err)
		c.setStatus(PhaseFailedToSend, "Failed to send")
		c.logLine("Failed to send payload to backend.")
		return
	}

	payload, _ := json.Marshal(report)
	c.setStatus(PhaseDone, "Done - state found")
	c.logLine("Sent to backend:", string(payload))

	friendly := "Your state: " + report.State
	c.setStatus(PhaseDone, friendly)
	c.logLine(friendly)
	return
}

// RequestLocation performs one position request with the client's options.
// The returned error is always a *position.Error; there is no retry.
func (c *Client) RequestLocation(ctx context.Context) (models.Coordinates, error) {
	if c.Positions == nil {
		return models.Coordinates{}, &position.Error{Code: position.PositionUnavailable, Err: ErrNotSupported}
	}
	opts := c.Options
	if opts == (position.Options{}) {
		opts = position.DefaultOptions
	}
	slog.Debug("Requesting position",
		"high_accuracy", opts.EnableHighAccuracy,
		"timeout", opts.Timeout,
		"maximum_age", opts.MaximumAge,
	)
	pos, err := position.Acquire(ctx, c.Positions, opts)
	if err != nil {
		return models.Coordinates{}, err
	}
	return pos.Coords, nil
}

// FailureMessage maps a position failure to the text shown to the user.
func FailureMessage(code position.Code) string {
	switch code {
	case position.PermissionDenied:
		return "Permission denied. Please allow location to continue."
	case position.PositionUnavailable:
		return "Position unavailable."
	case position.Timeout:
		return "Location request timed out."
	default:
		return "Geolocation error occurred."
	}
}

// GeocodeResult carries the resolved region and the raw response, which is
// nil when the lookup failed.
type GeocodeResult struct {
	Raw   *location.ReverseResponse
	State string
}

// ReverseGeocode never fails: any lookup error degrades to models.UnknownState
// so the run can still submit.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) GeocodeResult {
	c.logLine("Reverse geocoding...", fmt.Sprintf("(lat: %.5f, lon: %.5f)", lat, lon))

	if c.Geocoder == nil {
		c.logLine("Reverse geocode error:", "no geocoder configured")
		telemetry.GeocodeLookups.WithLabelValues("failure").Inc()
		return GeocodeResult{State: models.UnknownState}
	}

	resp, err := c.Geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		c.logLine("Reverse geocode error:", err.Error())
		telemetry.GeocodeLookups.WithLabelValues("failure").Inc()
		return GeocodeResult{State: models.UnknownState}
	}

	state := resp.Region()
	c.logLine("Reverse geocode result:", state)
	telemetry.GeocodeLookups.WithLabelValues("success").Inc()
	return GeocodeResult{Raw: resp, State: state}
}

func (c *Client) fail(msg string) {
	c.setStatus(PhaseError, "Error")
	c.logLine("Error:", msg)
}

func (c *Client) setStatus(p Phase, status string) {
	c.update(func(s State) State { return s.To(p, status) })
}

// logLine appends a timestamped line built from parts joined by spaces.
func (c *Client) logLine(parts ...string) {
	line := fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), strings.Join(parts, " "))
	c.update(func(s State) State { return s.Append(line) })
}

func (c *Client) update(fn func(State) State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == "" {
		c.state = InitialState()
	}
	c.state = fn(c.state)
	if c.Renderer != nil {
		c.Renderer.Render(c.state)
	}
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
