// Package web serves collage sessions over HTTP.
//
// Routes:
//
//	GET  /                         create a session and redirect to it
//	GET  /s/{id}                   collage page for a session
//	GET  /api?query=               search proxy returning {"data": [...]}
//	POST /sessions                 create a session (JSON)
//	GET  /sessions/{id}            session state (JSON)
//	GET  /sessions/{id}/fragment   collage HTML fragment
//	POST /sessions/{id}/query      submit a query
//	POST /sessions/{id}/select     click a tile
//	POST /sessions/{id}/exit       report the end of the exit animation
//	POST /sessions/{id}/viewport   report a new viewport size
//	GET  /healthz                  liveness
//	GET  /metrics                  Prometheus metrics
package web

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/placement"
	"github.com/matzehuels/collage/pkg/search"
	"github.com/matzehuels/collage/pkg/session"
)

// Options configure a Server. Zero values fall back to package defaults.
type Options struct {
	Searcher       search.Searcher
	Store          session.Store
	Layout         collage.Config
	Session        session.Config
	InitialQuery   string
	Viewport       geom.Size // used until the browser reports its size
	Debounce       time.Duration
	ExitDelay      time.Duration
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
	Logger         *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore(0, 0)
	}
	if opts.Layout.TileSize == (geom.Size{}) {
		opts.Layout = collage.DefaultConfig()
	}
	if opts.InitialQuery == "" {
		opts.InitialQuery = session.DefaultInitialQuery
	}
	if opts.Viewport == (geom.Size{}) {
		opts.Viewport = geom.Size{Width: 1280, Height: 800}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 20 * time.Second
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Server{opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Get("/api", s.searchProxy)

	r.Get("/", s.home)
	r.Get("/s/{id}", s.page)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Get("/fragment", s.fragment)
			r.Post("/query", s.submitQuery)
			r.Post("/select", s.selectTile)
			r.Post("/exit", s.exitCompleted)
			r.Post("/viewport", s.resize)
		})
	})
	return r
}

func (s *Server) newSession(size geom.Size) *session.Session {
	return session.New(func(vp placement.Viewport) *session.Controller {
		c := session.NewController(collage.NewLayouter(nil, s.opts.Layout), vp, s.opts.Session)
		c.Logger = s.logger
		return c
	}, s.opts.Searcher, size)
}

// requestLogger logs one line per request with structured fields.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start))
		})
	}
}
