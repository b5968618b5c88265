// Package search runs photo searches for collage sessions.
//
// A [Provider] talks to one photo source (the Unsplash API, or a running
// collage server through [RemoteClient]). [Service] wraps a provider with
// query validation, request coalescing, logging and metrics, and reports
// every failure as a FETCH_FAILURE error so callers handle one error shape.
package search

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/observability"
	"github.com/matzehuels/collage/pkg/photo"
)

// Searcher returns the photos matching a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]photo.Photo, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string) ([]photo.Photo, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]photo.Photo, error) {
	return f(ctx, query)
}

// Provider is a photo source. If refresh is true, cached responses are skipped.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, refresh bool) ([]photo.Photo, error)
}

// Service is a Searcher backed by a Provider. Concurrent searches for the
// same query share one provider call. It is safe for concurrent use.
type Service struct {
	Provider Provider
	Logger   *log.Logger
	Refresh  bool
	// Timeout bounds a shared provider call. Zero means DefaultTimeout.
	Timeout time.Duration

	group singleflight.Group
}

// DefaultTimeout bounds a provider call when Service.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// NewService creates a Service. A nil logger discards output.
func NewService(p Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Service{Provider: p, Logger: logger}
}

// Search validates query and fetches it from the provider.
// Any failure is returned as an error with code FETCH_FAILURE whose chain
// keeps the underlying cause (INVALID_QUERY, INVALID_PHOTO, ...).
func (s *Service) Search(ctx context.Context, query string) ([]photo.Photo, error) {
	query = strings.TrimSpace(query)
	if err := errors.ValidateQuery(query); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetchFailure, err, "search %q", query)
	}

	name := s.Provider.Name()
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, name, query)
	start := time.Now()

	// The call outlives any one caller: a caller that goes away only stops
	// waiting for it.
	ch := s.group.DoChan(strings.ToLower(query), func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout())
		defer cancel()
		return s.Provider.Search(callCtx, query, s.Refresh)
	})

	var photos []photo.Photo
	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		err = res.Err
		if err == nil {
			photos = slices.Clone(res.Val.([]photo.Photo))
			if res.Shared {
				s.Logger.Debug("shared in-flight search", "query", query)
			}
		}
	}
	took := time.Since(start)
	hooks.OnSearchComplete(ctx, name, query, len(photos), took, err)

	if err != nil {
		s.Logger.Warn("search failed", "provider", name, "query", query, "error", err)
		return nil, errors.Wrap(errors.ErrCodeFetchFailure, err, "search %q", query)
	}
	s.Logger.Info("search complete", "provider", name, "query", query, "photos", len(photos), "duration", took)
	if photos == nil {
		photos = []photo.Photo{}
	}
	return photos, nil
}

func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}
