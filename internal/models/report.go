package models

import "time"

// Endpoint names of the two submission routes.
const (
	EndpointSubmit = "submit-location"
	EndpointSave   = "save-location"
)

// UnknownState is reported whenever no region name could be resolved.
const UnknownState = "Unknown"

// TimestampLayout renders report timestamps as ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// LocationReport is the payload a client submits once per run. It is never stored.
type LocationReport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	State     string  `json:"state"`
	Timestamp string  `json:"timestamp"`
	UserAgent string  `json:"userAgent"`
}

func NewLocationReport(c Coordinates, state string, now time.Time, userAgent string) LocationReport {
	if state == "" {
		state = UnknownState
	}
	return LocationReport{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		State:     state,
		Timestamp: now.UTC().Format(TimestampLayout),
		UserAgent: userAgent,
	}
}

// LegacyLocation is the subset of fields the legacy endpoint logs. Values are
// left untyped since that endpoint accepts any payload shape.
type LegacyLocation struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
	State     any `json:"state"`
}

// LegacyLocationFrom picks the legacy fields out of a decoded payload.
func LegacyLocationFrom(payload map[string]any) LegacyLocation {
	return LegacyLocation{
		Latitude:  payload["latitude"],
		Longitude: payload["longitude"],
		State:     payload["state"],
	}
}
