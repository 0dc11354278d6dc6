package cookpad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the recipe search API. Responses are cached by request
// parameters when a cache is attached.
type Client struct {
	config *config.CookpadConfig
	client *resty.Client
	cache  Cache
}

// NewClient creates an API client. cache may be nil.
func NewClient(cfg *config.CookpadConfig, cache Cache) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token)).
		SetHeader("Accept", "application/json").
		SetQueryParam("country", cfg.Country).
		SetQueryParam("language", cfg.Language)

	return &Client{
		config: cfg,
		client: client,
		cache:  cache,
	}
}

// SearchRecipes runs a recipe search. The returned recipes may be sparse
// (missing ingredients and steps); use GetRecipe for the full version.
func (c *Client) SearchRecipes(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	key := cacheKey("search", query, opts.Order, strconv.Itoa(opts.PerPage), opts.IncludedIngredients)
	if data, err := c.cacheGet(ctx, key); err == nil {
		var cached SearchResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			common.LogDebug("search cache hit", zap.String("query", query))
			return &cached, nil
		}
	}

	params := map[string]string{
		"query": query,
	}
	if opts.Order != "" {
		params["order"] = opts.Order
	}
	if opts.PerPage > 0 {
		params["per_page"] = strconv.Itoa(opts.PerPage)
	}
	if opts.IncludedIngredients != "" {
		params["included_ingredients"] = opts.IncludedIngredients
	}

	var result SearchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get("/search/recipes")

	if err != nil {
		return nil, fmt.Errorf("recipe search request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("recipe search returned non-200",
			zap.Int("status", resp.StatusCode()),
			zap.String("query", query),
		)
		return nil, common.ErrSearchFailed
	}

	c.cacheSet(ctx, key, &result)
	return &result, nil
}

// GetRecipe fetches the full recipe detail for enrichment.
func (c *Client) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	key := cacheKey("recipe", strconv.FormatInt(id, 10))
	if data, err := c.cacheGet(ctx, key); err == nil {
		var cached Recipe
		if err := json.Unmarshal(data, &cached); err == nil {
			common.LogDebug("recipe cache hit", zap.Int64("id", id))
			return &cached, nil
		}
	}

	var result Recipe
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/recipes/%d", id))

	if err != nil {
		return nil, fmt.Errorf("recipe detail request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("recipe detail returned non-200",
			zap.Int("status", resp.StatusCode()),
			zap.Int64("id", id),
		)
		return nil, common.ErrSearchFailed
	}

	c.cacheSet(ctx, key, &result)
	return &result, nil
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]byte, error) {
	if c.cache == nil {
		return nil, common.ErrCacheDisabled
	}
	return c.cache.Get(ctx, key)
}

// cacheSet stores a response, best effort.
func (c *Client) cacheSet(ctx context.Context, key string, v interface{}) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data); err != nil {
		common.LogDebug("cache set failed", zap.Error(err))
	}
}
