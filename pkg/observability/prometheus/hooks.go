// Package prometheus backs the observability hooks with Prometheus metrics.
package prometheus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/collage/pkg/observability"
)

// Hooks implements every observability hook interface.
type Hooks struct {
	searchDuration *promclient.HistogramVec
	searchErrors   *promclient.CounterVec
	searchPhotos   *promclient.HistogramVec
	layoutTiles    *promclient.CounterVec
	layoutDuration promclient.Histogram
	transitions    *promclient.CounterVec
	cacheEvents    *promclient.CounterVec
	httpRequests   *promclient.CounterVec
	httpDuration   *promclient.HistogramVec
}

// NewHooks registers collage metrics under namespace. A nil registerer uses
// the default registry. Registering twice reuses the existing collectors.
func NewHooks(namespace string, reg promclient.Registerer) (*Hooks, error) {
	if namespace == "" {
		namespace = "collage"
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	h := &Hooks{
		searchDuration: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Latency of photo searches.",
			Buckets:   promclient.DefBuckets,
		}, []string{"provider"}),
		searchErrors: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "search_errors_total",
			Help:      "Failed photo searches.",
		}, []string{"provider"}),
		searchPhotos: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "search_photos",
			Help:      "Photos returned per search.",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 50},
		}, []string{"provider"}),
		layoutTiles: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "layout_tiles_total",
			Help:      "Tiles handled by layout passes.",
		}, []string{"outcome"}),
		layoutDuration: promclient.NewHistogram(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Duration of collage layout passes.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05},
		}),
		transitions: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session controller state changes.",
		}, []string{"from", "to"}),
		cacheEvents: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Response cache hits, misses and writes.",
		}, []string{"key_type", "event"}),
		httpRequests: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP requests by host and status.",
		}, []string{"host", "status"}),
		httpDuration: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_duration_seconds",
			Help:      "Outgoing HTTP request latency.",
			Buckets:   promclient.DefBuckets,
		}, []string{"host"}),
	}

	var err error
	h.searchDuration, err = register(reg, h.searchDuration)
	if err != nil {
		return nil, err
	}
	if h.searchErrors, err = register(reg, h.searchErrors); err != nil {
		return nil, err
	}
	if h.searchPhotos, err = register(reg, h.searchPhotos); err != nil {
		return nil, err
	}
	if h.layoutTiles, err = register(reg, h.layoutTiles); err != nil {
		return nil, err
	}
	if h.layoutDuration, err = register(reg, h.layoutDuration); err != nil {
		return nil, err
	}
	if h.transitions, err = register(reg, h.transitions); err != nil {
		return nil, err
	}
	if h.cacheEvents, err = register(reg, h.cacheEvents); err != nil {
		return nil, err
	}
	if h.httpRequests, err = register(reg, h.httpRequests); err != nil {
		return nil, err
	}
	if h.httpDuration, err = register(reg, h.httpDuration); err != nil {
		return nil, err
	}
	return h, nil
}

// register adds c to reg, returning the already registered collector of the
// same type when an identical one exists.
func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// Install registers h for every hook category.
func (h *Hooks) Install() {
	observability.SetSearchHooks(h)
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *Hooks) OnSearchStart(context.Context, string, string) {}

func (h *Hooks) OnSearchComplete(_ context.Context, provider, _ string, photos int, d time.Duration, err error) {
	h.searchDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		h.searchErrors.WithLabelValues(provider).Inc()
		return
	}
	h.searchPhotos.WithLabelValues(provider).Observe(float64(photos))
}

func (h *Hooks) OnLayout(_ context.Context, placed, omitted int, d time.Duration) {
	h.layoutTiles.WithLabelValues("placed").Add(float64(placed))
	h.layoutTiles.WithLabelValues("omitted").Add(float64(omitted))
	h.layoutDuration.Observe(d.Seconds())
}

func (h *Hooks) OnTransition(_ context.Context, from, to string) {
	h.transitions.WithLabelValues(from, to).Inc()
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpRequests.WithLabelValues(host, "error").Inc()
}

var (
	_ observability.SearchHooks = (*Hooks)(nil)
	_ observability.LayoutHooks = (*Hooks)(nil)
	_ observability.CacheHooks  = (*Hooks)(nil)
	_ observability.HTTPHooks   = (*Hooks)(nil)
)
