package location_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statefinder/pkg/location"
)

func TestReverse_QueryAndHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"California, United States","address":{"state":"California","country_code":"us"}}`))
	}))
	defer srv.Close()

	client := location.NewClient(srv.URL+"/reverse", "statefinder-test/1.0")
	resp, err := client.Reverse(context.Background(), 37.0, -122.0)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "/reverse", got.URL.Path)
	assert.Equal(t, "jsonv2", q.Get("format"))
	assert.Equal(t, "8", q.Get("zoom"))
	assert.Equal(t, "1", q.Get("addressdetails"))
	assert.Equal(t, "37", q.Get("lat"))
	assert.Equal(t, "-122", q.Get("lon"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "statefinder-test/1.0", got.Header.Get("User-Agent"))

	assert.Equal(t, "California", resp.Region())
}

func TestReverse_Region(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"state field", `{"address":{"state":"California"}}`, "California"},
		{"display name only", `{"address":{"road":"Elm"},"display_name":"Elm, Nowhere"}`, "Elm, Nowhere"},
		{"nothing usable", `{"address":{}}`, "Unknown"},
		{"no address block", `{}`, "Unknown"},
		{"string place_id", `{"place_id":"123","address":{"state":"California"}}`, "California"},
		{"numeric lat and lon", `{"lat":37.0,"lon":-122.0,"address":{"state":"California"}}`, "California"},
		{"numeric boundingbox", `{"boundingbox":[1,2,3,4],"address":{"state":"California"}}`, "California"},
		{"string importance", `{"importance":"high","place_rank":"8","address":{"state":"California"}}`, "California"},
		{"address not an object", `{"address":"Elm St","display_name":"Elm, Nowhere"}`, "Elm, Nowhere"},
		{"display name not a string", `{"address":{},"display_name":42}`, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := location.NewClient(srv.URL, "").Reverse(context.Background(), 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Region())
		})
	}
}

func TestReverse_Failures(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := location.NewClient(srv.URL, "").Reverse(context.Background(), 1, 2)
		var statusErr *location.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := location.NewClient(srv.URL, "").Reverse(context.Background(), 1, 2)
		assert.Error(t, err)
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := location.NewClient(url, "").Reverse(context.Background(), 1, 2)
		assert.Error(t, err)
	})
}

func TestReverseURL_Defaults(t *testing.T) {
	client := location.NewClient("", "")
	assert.Equal(t, location.DefaultUserAgent, client.UserAgent)
	assert.Equal(t,
		"https://nominatim.openstreetmap.org/reverse?addressdetails=1&format=jsonv2&lat=37.5&lon=-122.25&zoom=8",
		client.ReverseURL(37.5, -122.25))
}
