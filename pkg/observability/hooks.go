// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks; main decides what backs them. The
// defaults are no-ops, so packages stay free of hard dependencies on a
// metrics backend. The prometheus subpackage provides one implementation.
//
//	hooks, err := prometheus.NewHooks("collage", registry)
//	if err != nil { ... }
//	hooks.Install() // registers search, layout, cache and HTTP hooks
//
// Libraries emit events:
//
//	observability.Search().OnSearchStart(ctx, "unsplash", query)
//	observability.Search().OnSearchComplete(ctx, "unsplash", query, n, took, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from photo searches.
type SearchHooks interface {
	OnSearchStart(ctx context.Context, provider, query string)
	OnSearchComplete(ctx context.Context, provider, query string, photos int, duration time.Duration, err error)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from collage layout passes.
type LayoutHooks interface {
	// OnLayout records one pass: tiles placed and tiles omitted because
	// they could not fit.
	OnLayout(ctx context.Context, placed, omitted int, duration time.Duration)

	// OnTransition records a session state change, e.g. "idle" -> "loading".
	OnTransition(ctx context.Context, from, to string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchStart(context.Context, string, string) {}
func (NoopSearchHooks) OnSearchComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayout(context.Context, int, int, time.Duration) {}
func (NoopLayoutHooks) OnTransition(context.Context, string, string)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds one registered hook set.
type slot[T any] struct {
	mu   sync.RWMutex
	noop T
	cur  T
}

func newSlot[T any](noop T) *slot[T] {
	return &slot[T]{noop: noop, cur: noop}
}

func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.noop
	s.mu.Unlock()
}

var (
	searchHooks = newSlot[SearchHooks](NoopSearchHooks{})
	layoutHooks = newSlot[LayoutHooks](NoopLayoutHooks{})
	cacheHooks  = newSlot[CacheHooks](NoopCacheHooks{})
	httpHooks   = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetSearchHooks registers custom search hooks. Nil is ignored.
func SetSearchHooks(h SearchHooks) { searchHooks.set(h) }

// SetLayoutHooks registers custom layout hooks. Nil is ignored.
func SetLayoutHooks(h LayoutHooks) { layoutHooks.set(h) }

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h) }

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h) }

// Search returns the registered search hooks.
func Search() SearchHooks { return searchHooks.get() }

// Layout returns the registered layout hooks.
func Layout() LayoutHooks { return layoutHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	searchHooks.reset()
	layoutHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
