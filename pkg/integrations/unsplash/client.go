// Package unsplash searches the Unsplash photo API.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/integrations"
	"github.com/matzehuels/collage/pkg/photo"
)

// Provider is the name used for cache keys, logs and metrics.
const Provider = "unsplash"

// Defaults for Config fields left zero.
const (
	DefaultBaseURL  = "https://api.unsplash.com"
	DefaultPerPage  = 20
	DefaultCacheTTL = time.Hour
	MaxPerPage      = 30
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	AccessKey string
	PerPage   int
	CacheTTL  time.Duration
}

// Client searches Unsplash. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	perPage int
}

// NewClient creates a Client that caches responses in backend.
// An empty AccessKey is allowed; Unsplash will answer 401.
func NewClient(backend cache.Cache, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	cfg.PerPage = min(cfg.PerPage, MaxPerPage)
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	headers := map[string]string{
		"Accept-Version": "v1",
		"Authorization":  "Client-ID " + cfg.AccessKey,
	}
	return &Client{
		Client:  integrations.NewClient(backend, Provider+":", cfg.CacheTTL, headers),
		baseURL: cfg.BaseURL,
		perPage: cfg.PerPage,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return Provider }

// PerPage returns the page size requested from Unsplash.
func (c *Client) PerPage() int { return c.perPage }

// Search returns the first page of photos matching query.
//
// Every record must pass [photo.Decode]; one bad record fails the whole
// search with an INVALID_PHOTO error. A response without "results" yields
// an empty slice. If refresh is true the cache is bypassed.
func (c *Client) Search(ctx context.Context, query string, refresh bool) ([]photo.Photo, error) {
	query = strings.TrimSpace(query)
	if err := errors.ValidateQuery(query); err != nil {
		return nil, err
	}
	key := cache.SearchKey(Provider, query, c.perPage)

	photos := []photo.Photo{}
	err := c.Cached(ctx, key, refresh, &photos, func() error {
		return c.fetch(ctx, query, &photos)
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (c *Client) fetch(ctx context.Context, query string, photos *[]photo.Photo) error {
	var data searchResponse
	if err := c.Get(ctx, c.searchURL(query), &data); err != nil {
		return fmt.Errorf("unsplash search %q: %w", query, err)
	}
	decoded, err := photo.DecodeAll(data.Results)
	if err != nil {
		return err
	}
	*photos = decoded
	return nil
}

func (c *Client) searchURL(query string) string {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("query", query)
	return c.baseURL + "/search/photos?" + q.Encode()
}

type searchResponse struct {
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
	Results    []json.RawMessage `json:"results"`
}
