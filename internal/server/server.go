package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	v1 "github.com/gosuda/boardlive/internal/api/v1"
	"github.com/gosuda/boardlive/internal/api/ws"
	"github.com/gosuda/boardlive/internal/config"
	"github.com/gosuda/boardlive/internal/server/middleware"
)

// Store is the persistence the server needs. *postgres.Store satisfies it.
type Store interface {
	v1.DataStore
	Ping(ctx context.Context) error
}

// Events is the process's realtime service. *realtime.Service satisfies it.
type Events interface {
	v1.EventPublisher
	ws.Watcher
	Subscribed() bool
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds background work
// owned by the middleware stack.
func New(ctx context.Context, cfg *config.Config, store Store, events Events) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RequireTenant())
		r.Use(middleware.RateLimit(ctx, 100, 200))

		apiConfig := huma.DefaultConfig("Boardlive API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, store, events)
	})

	// Upgrade attempts are throttled per client before the token is checked.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.LimitUpgrades(ctx, 5, 20))
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RequireTenant())
		r.Use(middleware.MaxWatchers(cfg.Realtime.MaxWatchers))
		registerWSRoutes(r, ws.NewHandler(events, store.Boards()))
	})

	registerOpsRoutes(router, store, events)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
