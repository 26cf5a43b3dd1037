// Package sink records accepted location submissions. The log sink is the
// record of truth; the Kafka sink forwards the same entries to a topic.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"statefinder/internal/keys"
	"statefinder/internal/models"
)

// Entry is one received submission.
type Entry struct {
	Endpoint   string         `json:"endpoint"`
	Payload    map[string]any `json:"payload"`
	ReceivedAt time.Time      `json:"receivedAt"`
	RequestID  string         `json:"requestId,omitempty"`
}

// Region returns the payload's "state" value, or "" when absent.
func (e Entry) Region() string {
	state, _ := e.Payload["state"].(string)
	return state
}

type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// LogSink writes entries through slog. Legacy entries are logged with their
// location fields only.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Record(_ context.Context, e Entry) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if e.Endpoint == models.EndpointSave {
		loc := models.LegacyLocationFrom(e.Payload)
		logger.Info("New Location Received",
			"latitude", loc.Latitude,
			"longitude", loc.Longitude,
			"state", loc.State,
			"request_id", e.RequestID,
		)
		return nil
	}
	logger.Info("Received location payload",
		"endpoint", e.Endpoint,
		"request_id", e.RequestID,
		"payload", e.Payload,
	)
	return nil
}

// Publisher is satisfied by *kafkaclient.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// KafkaSink forwards entries as JSON keyed by endpoint and region.
type KafkaSink struct {
	Publisher Publisher
}

func (s KafkaSink) Record(ctx context.Context, e Entry) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := s.Publisher.Publish(ctx, keys.Submission(e.Endpoint, e.Region()), value); err != nil {
		return fmt.Errorf("forward entry: %w", err)
	}
	return nil
}

// Multi records to every sink and joins their errors.
type Multi []Sink

func (m Multi) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Decode parses a forwarded entry.
func Decode(value []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(value, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}
