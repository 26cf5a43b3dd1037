// Package api serves the location submission endpoints.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"statefinder/internal/models"
	"statefinder/internal/sink"
	"statefinder/internal/telemetry"
)

const (
	EndpointSubmit = models.EndpointSubmit
	EndpointSave   = models.EndpointSave
)

// maxBodyBytes caps request bodies; anything larger is a server error like
// any other body that cannot be read.
const maxBodyBytes = 1 << 20

// Handler accepts location submissions and records them through Sink.
type Handler struct {
	Sink sink.Sink
	Now  func() time.Time
}

func NewHandler(s sink.Sink) *Handler {
	if s == nil {
		s = sink.LogSink{}
	}
	return &Handler{Sink: s, Now: time.Now}
}

type submitResponse struct {
	OK       bool           `json:"ok"`
	Received map[string]any `json:"received"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SubmitLocation handles POST /api/submit-location. The payload is echoed
// back untouched.
func (h *Handler) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
		telemetry.SubmissionsTotal.WithLabelValues(EndpointSubmit, "method_not_allowed").Inc()
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.serverError(w, r, fmt.Errorf("panic: %v", rec))
		}
	}()

	payload, err := decodeObject(w, r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.record(r, EndpointSubmit, payload)

	writeJSON(w, http.StatusOK, submitResponse{OK: true, Received: payload})
	telemetry.SubmissionsTotal.WithLabelValues(EndpointSubmit, "accepted").Inc()
}

// SaveLocation handles the legacy POST /api/save-location. It acknowledges
// every POST regardless of payload shape and does not echo it.
func (h *Handler) SaveLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		telemetry.SubmissionsTotal.WithLabelValues(EndpointSave, "method_not_allowed").Inc()
		return
	}

	payload, err := decodeObject(w, r)
	if err != nil {
		slog.Warn("Unreadable legacy payload", "request_id", RequestIDFrom(r.Context()), "error", err)
		payload = map[string]any{}
	}

	h.record(r, EndpointSave, payload)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	telemetry.SubmissionsTotal.WithLabelValues(EndpointSave, "accepted").Inc()
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// record hands the entry to the sink. A forwarding failure is logged and
// counted; it never changes the response.
func (h *Handler) record(r *http.Request, endpoint string, payload map[string]any) {
	entry := sink.Entry{
		Endpoint:   endpoint,
		Payload:    payload,
		ReceivedAt: h.now().UTC(),
		RequestID:  RequestIDFrom(r.Context()),
	}
	if err := h.Sink.Record(r.Context(), entry); err != nil {
		slog.Warn("Failed to record submission", "endpoint", endpoint, "request_id", entry.RequestID, "error", err)
		telemetry.ForwardErrors.WithLabelValues(endpoint).Inc()
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Server error", "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{OK: false, Error: "Server error"})
	telemetry.SubmissionsTotal.WithLabelValues(EndpointSubmit, "error").Inc()
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

var errNotObject = errors.New("request body is not a JSON object")

// decodeObject reads the body as a JSON object. An empty body or a falsy
// scalar (null, false, 0, "") counts as an empty object. Numbers keep their
// original text.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		return map[string]any{}, nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode body: trailing data")
	}

	if obj, ok := v.(map[string]any); ok {
		return obj, nil
	}
	if isFalsy(v) {
		return map[string]any{}, nil
	}
	return nil, errNotObject
}

func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
