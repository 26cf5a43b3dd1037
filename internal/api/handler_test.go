package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statefinder/internal/sink"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []sink.Entry
	err     error
}

func (s *recordingSink) Record(_ context.Context, e sink.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.err
}

func serve(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(w, req)
	return w
}

func TestSubmitLocation(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantBody   string
		wantAllow  string
		wantRecord bool
	}{
		{
			name:       "echoes payload",
			method:     http.MethodPost,
			body:       `{"a":1}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true,"received":{"a":1}}`,
			wantRecord: true,
		},
		{
			name:       "full report",
			method:     http.MethodPost,
			body:       `{"latitude":37,"longitude":-122,"state":"California","timestamp":"2024-05-01T10:00:00.000Z","userAgent":"ua"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true,"received":{"latitude":37,"longitude":-122,"state":"California","timestamp":"2024-05-01T10:00:00.000Z","userAgent":"ua"}}`,
			wantRecord: true,
		},
		{
			name:       "empty body is an empty mapping",
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true,"received":{}}`,
			wantRecord: true,
		},
		{
			name:       "null body is an empty mapping",
			method:     http.MethodPost,
			body:       `null`,
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true,"received":{}}`,
			wantRecord: true,
		},
		{
			name:       "false body is an empty mapping",
			method:     http.MethodPost,
			body:       `false`,
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true,"received":{}}`,
			wantRecord: true,
		},
		{
			name:       "zero body is an empty mapping",
			method:     http.MethodPost,
			body:       `0`,
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true,"received":{}}`,
			wantRecord: true,
		},
		{
			name:       "empty string body is an empty mapping",
			method:     http.MethodPost,
			body:       `""`,
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true,"received":{}}`,
			wantRecord: true,
		},
		{
			name:       "truthy scalar body is a server error",
			method:     http.MethodPost,
			body:       `"hello"`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"ok":false,"error":"Server error"}`,
		},
		{
			name:       "GET rejected with Allow header",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method Not Allowed"}`,
			wantAllow:  "POST",
		},
		{
			name:       "PUT rejected with Allow header",
			method:     http.MethodPut,
			body:       `{"a":1}`,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method Not Allowed"}`,
			wantAllow:  "POST",
		},
		{
			name:       "malformed JSON is a server error",
			method:     http.MethodPost,
			body:       `{"a":`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"ok":false,"error":"Server error"}`,
		},
		{
			name:       "array body is a server error",
			method:     http.MethodPost,
			body:       `[1,2]`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"ok":false,"error":"Server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSink{}
			w := serve(t, NewHandler(rec), tt.method, "/api/submit-location", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantAllow, w.Header().Get("Allow"))
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
			if tt.wantRecord {
				require.Len(t, rec.entries, 1)
				assert.Equal(t, EndpointSubmit, rec.entries[0].Endpoint)
			} else {
				assert.Empty(t, rec.entries)
			}
		})
	}
}

func TestSubmitLocation_SinkFailureStillAcknowledges(t *testing.T) {
	rec := &recordingSink{err: errors.New("broker down")}
	w := serve(t, NewHandler(rec), http.MethodPost, "/api/submit-location", `{"state":"Ohio"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"received":{"state":"Ohio"}}`, w.Body.String())
}

type panickingSink struct{}

func (panickingSink) Record(context.Context, sink.Entry) error { panic("boom") }

func TestSubmitLocation_PanicIsServerError(t *testing.T) {
	w := serve(t, NewHandler(panickingSink{}), http.MethodPost, "/api/submit-location", `{"a":1}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Server error"}`, w.Body.String())
}

func TestSaveLocation(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"accepts report", http.MethodPost, `{"latitude":1,"longitude":2,"state":"X"}`, http.StatusOK, `{"success":true}`},
		{"accepts any shape", http.MethodPost, `{"foo":"bar"}`, http.StatusOK, `{"success":true}`},
		{"accepts malformed body", http.MethodPost, `not json`, http.StatusOK, `{"success":true}`},
		{"accepts array body", http.MethodPost, `[1]`, http.StatusOK, `{"success":true}`},
		{"accepts empty body", http.MethodPost, ``, http.StatusOK, `{"success":true}`},
		{"rejects GET", http.MethodGet, ``, http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{"rejects DELETE", http.MethodDelete, ``, http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSink{}
			w := serve(t, NewHandler(rec), tt.method, "/api/save-location", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Empty(t, w.Header().Get("Allow"), "legacy endpoint never sends Allow")
		})
	}
}

func TestSaveLocation_RecordsLegacyFields(t *testing.T) {
	rec := &recordingSink{}
	serve(t, NewHandler(rec), http.MethodPost, "/api/save-location", `{"latitude":1,"longitude":2,"state":"X"}`)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, EndpointSave, rec.entries[0].Endpoint)
	assert.Equal(t, "X", rec.entries[0].Region())
}

func TestSaveLocation_LogsOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	w := serve(t, NewHandler(sink.Multi{sink.LogSink{}}), http.MethodPost, "/api/save-location", `{"latitude":1,"longitude":2,"state":"X"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(buf.String(), "New Location Received"))
	assert.NotContains(t, buf.String(), "Received location payload")
}

func TestHealthAndMetrics(t *testing.T) {
	h := NewHandler(nil)

	w := serve(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID_Propagates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/submit-location", strings.NewReader(`{}`))
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()

	rec := &recordingSink{}
	NewRouter(NewHandler(rec)).ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "abc-123", rec.entries[0].RequestID)
}
