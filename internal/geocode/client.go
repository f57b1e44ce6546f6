package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"campuspulse/internal/upstream"
)

// Result is the best match for a free-text address search.
type Result struct {
	DisplayName string
	Latitude    float64
	Longitude   float64
}

// Client calls a Nominatim-compatible geocoding service. Used as the
// fallback when the transit network does not know a place.
type Client struct {
	baseURL    string
	contact    string
	httpClient *http.Client
}

func NewClient(baseURL, contact string) *Client {
	return &Client{
		baseURL:    baseURL,
		contact:    contact,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns the single best match for the query, or nil when the
// geocoder knows nothing about it.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "0")
	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fmt.Sprintf("CampusPulse/1.0 (%s)", c.contact))
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &upstream.Error{Service: "geocode", Status: resp.StatusCode, Body: string(body)}
	}

	// Nominatim returns lat/lon as strings.
	var items []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(items[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", items[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(items[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", items[0].Lon, err)
	}
	return &Result{DisplayName: items[0].DisplayName, Latitude: lat, Longitude: lon}, nil
}
