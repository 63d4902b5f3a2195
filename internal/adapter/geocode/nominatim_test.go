package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "40.7128", r.URL.Query().Get("lat"))
		assert.Equal(t, "-74.006", r.URL.Query().Get("lon"))
		assert.Equal(t, "waypost-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"display_name": "City Hall, New York, New York County, New York, USA",
			"address": {"city": "New York", "county": "New York County", "state": "New York"}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "waypost-test", 5*time.Second)

	place, err := client.ReverseGeocode(context.Background(), 40.7128, -74.006)
	require.NoError(t, err)
	assert.Equal(t, "New York", place.Address.City)
	assert.Equal(t, "New York County", place.Address.County)
	assert.Equal(t, "City Hall, New York, New York County, New York, USA", place.DisplayName)
}

func TestReverseGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "waypost-test", 5*time.Second)

	_, err := client.ReverseGeocode(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestReverseGeocodeMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "waypost-test", 5*time.Second)

	_, err := client.ReverseGeocode(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestReverseGeocodeCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, "waypost-test", 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ReverseGeocode(ctx, 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
