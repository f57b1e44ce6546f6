package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"campuspulse/internal/upstream"
)

const userAgent = "CampusPulse/1.0"

// Client calls the transit network's REST API (v6.bvg.transport.rest wire
// format).
type Client struct {
	baseURL    string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRedisCache configures optional Redis caching for place searches. The
// daily job resolves the campus endpoint once per user; the cache collapses
// those into one upstream call per TTL.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Locations searches the network for places matching the query.
func (c *Client) Locations(ctx context.Context, query string, limit int) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("results", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/locations?%s", c.baseURL, params.Encode())

	cacheKey := fmt.Sprintf("locations:%d:%s", limit, query)
	var places []Place
	if c.readCache(ctx, cacheKey, &places) {
		return places, nil
	}

	if err := c.doGet(ctx, endpoint, &places); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, places)
	return places, nil
}

// JourneyRequest specifies one routing call. Either both stop identifiers
// or both coordinate/name pairs must be set.
type JourneyRequest struct {
	FromID   string
	ToID     string
	From     *Coordinate
	FromName string
	To       *Coordinate
	ToName   string

	Modes   ModeFilters
	Arrival *time.Time
	Results int
}

// Journeys requests itineraries between two endpoints.
func (c *Client) Journeys(ctx context.Context, req JourneyRequest) ([]Journey, error) {
	params := url.Values{}
	if req.FromID != "" && req.ToID != "" {
		params.Set("from", req.FromID)
		params.Set("to", req.ToID)
	} else {
		if req.From == nil || req.To == nil {
			return nil, fmt.Errorf("journey request needs stop ids or coordinates on both ends")
		}
		params.Set("from.latitude", formatFloat(req.From.Latitude))
		params.Set("from.longitude", formatFloat(req.From.Longitude))
		params.Set("from.name", req.FromName)
		params.Set("to.latitude", formatFloat(req.To.Latitude))
		params.Set("to.longitude", formatFloat(req.To.Longitude))
		params.Set("to.name", req.ToName)
	}
	params.Set("products[subway]", strconv.FormatBool(req.Modes.Subway))
	params.Set("products[suburban]", strconv.FormatBool(req.Modes.Suburban))
	params.Set("products[regional]", strconv.FormatBool(req.Modes.Regional))
	params.Set("products[tram]", strconv.FormatBool(req.Modes.Tram))
	params.Set("products[bus]", strconv.FormatBool(req.Modes.Bus))
	if req.Arrival != nil {
		params.Set("arrival", req.Arrival.Format(time.RFC3339))
	}
	results := req.Results
	if results <= 0 {
		results = 3
	}
	params.Set("results", strconv.Itoa(results))
	params.Set("polylines", "false")

	endpoint := fmt.Sprintf("%s/journeys?%s", c.baseURL, params.Encode())
	var resp journeysResponse
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Journeys, nil
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &upstream.Error{Service: "transit", Status: resp.StatusCode, Body: string(body)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
