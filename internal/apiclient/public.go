package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"giftfinder/internal/domain"
)

func (c *Client) ListStores(ctx context.Context) ([]domain.Store, error) {
	var out []domain.Store
	err := c.do(ctx, call{op: "ListStores", method: http.MethodGet, path: "/stores", fallback: "Failed to fetch stores"}, &out)
	return out, err
}

func (c *Client) GetStore(ctx context.Context, id int64) (domain.Store, error) {
	var out domain.Store
	err := c.do(ctx, call{op: "GetStore", method: http.MethodGet, path: "/stores/" + itoa(id), fallback: "Failed to fetch store"}, &out)
	return out, err
}

// ListGifts forwards only the filters that are set.
func (c *Client) ListGifts(ctx context.Context, f domain.GiftFilters) ([]domain.Gift, error) {
	var out []domain.Gift
	err := c.do(ctx, call{op: "ListGifts", method: http.MethodGet, path: "/gifts", query: f.Values(), fallback: "Failed to fetch gifts"}, &out)
	return out, err
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, call{op: "ListCategories", method: http.MethodGet, path: "/categories", fallback: "Failed to fetch categories"}, &out)
	return out, err
}

func (c *Client) ListInterests(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, call{op: "ListInterests", method: http.MethodGet, path: "/interests", fallback: "Failed to fetch interests"}, &out)
	return out, err
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, call{op: "Health", method: http.MethodGet, path: "/health", fallback: "API unavailable"}, &out)
	return out, err
}

// RequestRecommendations posts the criteria and returns the server's list
// in the order it was sent. Identical criteria already in flight share the
// one upstream request.
func (c *Client) RequestRecommendations(ctx context.Context, crit domain.Criteria) ([]domain.Recommendation, error) {
	if crit.Interests == nil {
		crit.Interests = []string{}
	}
	key, err := json.Marshal(crit)
	if err != nil {
		return nil, err
	}
	v, err, _ := c.flight.Do(string(key), func() (any, error) {
		var out []domain.Recommendation
		err := c.do(ctx, call{
			op:       "RequestRecommendations",
			method:   http.MethodPost,
			path:     "/gifts/recommend",
			body:     crit,
			fallback: "Failed to get recommendations",
		}, &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Recommendation), nil
}
