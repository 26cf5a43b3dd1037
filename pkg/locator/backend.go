package locator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"statefinder/internal/models"
)

// SubmitResult is the outcome of one backend submission: either OK with the
// decoded response body, or not OK with the error.
type SubmitResult struct {
	OK   bool
	Data map[string]any
	Err  error
}

// BackendError reports a non-success status from the submission endpoint.
type BackendError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *BackendError) Error() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", e.Status, e.Body))
}

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// SendToBackend posts report to the configured endpoint. It never retries.
func (c *Client) SendToBackend(ctx context.Context, report models.LocationReport) SubmitResult {
	c.logLine("Sending location to backend...")

	result := c.post(ctx, report)
	if !result.OK {
		c.logLine("Backend error:", result.Err.Error())
		return result
	}
	c.logLine("Backend response received.")
	return result
}

func (c *Client) post(ctx context.Context, report models.LocationReport) SubmitResult {
	body, err := json.Marshal(report)
	if err != nil {
		return SubmitResult{Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BackendURL, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{Err: fmt.Errorf("build backend request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return SubmitResult{Err: fmt.Errorf("backend request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body text is best effort; a failed read just leaves it empty.
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return SubmitResult{Err: &BackendError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(text)),
		}}
	}

	data := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data == nil {
		data = map[string]any{}
	}
	return SubmitResult{OK: true, Data: data}
}
