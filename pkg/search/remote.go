package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/collage/pkg/integrations"
	"github.com/matzehuels/collage/pkg/photo"
)

// DefaultPerPage is the page size RemoteClient asks for.
const DefaultPerPage = 20

// RemoteClient searches through the /api endpoint of a running collage
// server. Responses are not cached locally.
type RemoteClient struct {
	*integrations.Client
	baseURL string
	perPage int
}

// NewRemoteClient creates a client for the server at baseURL
// (e.g. "http://localhost:8080"). A non-positive perPage uses DefaultPerPage.
func NewRemoteClient(baseURL string, perPage int) *RemoteClient {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &RemoteClient{
		Client:  integrations.NewClient(nil, "remote:", 0, map[string]string{"Accept": "application/json"}),
		baseURL: strings.TrimRight(baseURL, "/"),
		perPage: perPage,
	}
}

// Name returns "remote".
func (c *RemoteClient) Name() string { return "remote" }

// Search fetches the photos for query. refresh is ignored.
func (c *RemoteClient) Search(ctx context.Context, query string, _ bool) ([]photo.Photo, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("query", query)

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.Get(ctx, c.baseURL+"/api?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("remote search %q: %w", query, err)
	}
	return photo.DecodeAll(resp.Data)
}
