package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"waypost/internal/domain/geo"
)

// Client is a reverse-geocoding client for a Nominatim-compatible API.
// It implements the geo.Geocoder interface.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a geocoding client. The timeout bounds each lookup;
// an exceeded timeout surfaces as an ordinary lookup failure, not a
// cancellation.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// reversePayload mirrors the wire format of a reverse lookup response.
type reversePayload struct {
	DisplayName string      `json:"display_name"`
	Address     geo.Address `json:"address"`
}

// ReverseGeocode gets place information for a coordinate pair.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*geo.Place, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error requesting reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected geocoder status %s", resp.Status)
	}

	var payload reversePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("error decoding reverse geocode payload: %w", err)
	}

	return &geo.Place{
		DisplayName: payload.DisplayName,
		Address:     payload.Address,
	}, nil
}
