// Package http serves the ledger's JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finledger/internal/log"
	"finledger/internal/metrics"
	"finledger/internal/middleware/auth"
	"finledger/internal/middleware/ratelimit"
	"finledger/internal/middleware/security"
	"finledger/internal/middleware/trace"
	"finledger/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	readyTimeout      = 5 * time.Second
)

// Config holds the transport settings of the API.
type Config struct {
	Addr               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	JWTSecret          string
	BlockSuspicious    bool
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Months    *services.MonthService
	Dashboard *services.DashboardService
	Cards     *services.CardService
	// Ready reports whether the backing store answers; nil means always ready.
	Ready   func(ctx context.Context) error
	Metrics *metrics.Collector
	Logger  *log.Logger
}

type Server struct {
	http.Server

	months    *services.MonthService
	dashboard *services.DashboardService
	cards     *services.CardService
	ready     func(ctx context.Context) error
	metrics   *metrics.Collector
	limiter   *ratelimit.Limiter
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer wires middleware and routes, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		months:    deps.Months,
		dashboard: deps.Dashboard,
		cards:     deps.Cards,
		ready:     deps.Ready,
		metrics:   deps.Metrics,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			WritesOnly:        true,
		}),
		started: time.Now(),
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(cfg, logger.WithComponent(log.ComponentHTTP)),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

func (s *Server) routes(cfg Config, logger *log.Logger) http.Handler {
	detector := security.NewDetector(cfg.BlockSuspicious)
	tracer := trace.NewMiddleware(logger, detector.ExtractClientIP, s.metrics)
	authenticator := auth.NewAuthenticator(cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(log.Middleware(logger))
	r.Use(tracer.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", trace.RequestIDHeader, auth.UserHeader},
		ExposedHeaders:   []string{trace.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, http.StatusNotFound, CodeNotFound, "route not found", nil)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(authenticator.Middleware(writeUnauthorized))
		r.Use(s.limiter.Middleware(detector.ExtractClientIP, writeRateLimited))

		r.Route("/months", func(r chi.Router) {
			r.Post("/", s.handleCreateMonth)
			r.Get("/", s.handleListMonths)
			r.Get("/{id}", s.handleGetMonth)
			r.Put("/{id}", s.handleUpdateMonth)
			r.Get("/{id}/history", s.handleListHistory)
			r.Get("/{id}/history/{key}", s.handleGetHistory)
		})
		r.Post("/reconcile", s.handleReconcile)
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", s.handleListCards)
			r.Post("/", s.handleAddCard)
			r.Get("/{id}", s.handleGetCard)
			r.Put("/{id}", s.handleEditCard)
			r.Put("/{id}/bill", s.handleRecordBill)
			r.Get("/{id}/statements", s.handleListStatements)
			r.Post("/{id}/statements", s.handleCloseStatement)
		})
	})

	return r
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Truncate(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeErrorCode(w, http.StatusServiceUnavailable, CodeNotReady, "storage unavailable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
