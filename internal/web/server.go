// Package web provides the HTTP server and handlers for the dashboard.
package web

import (
	"context"
	"embed"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/worlddash/internal/config"
	"github.com/JonMunkholm/worlddash/internal/core"
	"github.com/JonMunkholm/worlddash/internal/logging"
	"github.com/JonMunkholm/worlddash/internal/metrics"
	"github.com/JonMunkholm/worlddash/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Deps are the collaborators of a Server. Metrics may be nil.
type Deps struct {
	Config  *config.Config
	Dataset *core.Dataset
	Catalog *core.Catalog
	Metrics *metrics.Metrics
}

// Server serves the dashboard pages and the JSON/CSV API over one
// immutable dataset.
type Server struct {
	cfg     *config.Config
	dataset *core.Dataset
	catalog *core.Catalog
	metrics *metrics.Metrics

	router  *chi.Mux
	limiter *rateLimiter
	exports *exportLimiter

	mu     sync.Mutex
	server *http.Server
}

// NewServer wires routes and middleware. Call Close (or Shutdown) to stop
// the rate limiter's cleanup goroutine.
func NewServer(d Deps) *Server {
	s := &Server{
		cfg:     d.Config,
		dataset: d.Dataset,
		catalog: d.Catalog,
		metrics: d.Metrics,
		router:  chi.NewRouter(),
		exports: newExportLimiter(d.Config.Rate.ExportConcurrent, d.Config.Rate.ExportMaxWait),
	}
	if s.catalog == nil {
		s.catalog = core.DefaultCatalog()
	}
	if d.Config.Rate.Enabled {
		s.limiter = newRateLimiter(d.Config.Rate.RequestsPerMinute, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.With(middleware.BearerToken(s.cfg.Metrics.Token)).
			Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}

		r.Handle("/static/*", http.FileServer(http.FS(staticFiles)))

		r.Get("/", s.handleIndex)
		r.Get("/poblacion", s.handlePopulation)
		r.Get("/indicadores", s.handleIndicators)

		r.Route("/api", func(r chi.Router) {
			r.Get("/dataset", s.handleDataset)
			r.Get("/buckets", s.handleBuckets)
			r.Get("/filter", s.handleFilter)
			r.Get("/export", s.handleExport)
			r.Get("/charts/{page}", s.handleCharts)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errors.New("route not found"), http.StatusNotFound)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	logging.FromContext(context.Background()).Info("server listening",
		"addr", l.Addr().String(),
		"version", s.dataset.Version(),
		"countries", s.dataset.Len(),
	)
	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and its background work.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.Close()
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Close stops background goroutines. It does not close listeners.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; object-src 'none'; frame-ancestors 'none'"

// securityHeaders adds security headers to all responses.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}
