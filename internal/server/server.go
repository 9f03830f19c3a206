package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wiredhikari/eix/internal/auth"
	"github.com/wiredhikari/eix/internal/config"
	"github.com/wiredhikari/eix/internal/server/middleware"
	"github.com/wiredhikari/eix/internal/storage"
)

// HandlerSet contains all HTTP handlers
type HandlerSet struct {
	Health  http.HandlerFunc
	Metrics http.HandlerFunc

	// Package handlers
	ListPackages http.HandlerFunc
	GetPackage   http.HandlerFunc
	GetBest      http.HandlerFunc
}

// Server represents the HTTP server
type Server struct {
	config        *config.Config
	logger        *slog.Logger
	store         storage.Store
	snapshot      *Snapshot
	authenticator auth.Authenticator
	httpServer    *http.Server
	handlers      HandlerSet
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *slog.Logger, store storage.Store, authenticator auth.Authenticator) *Server {
	return &Server{
		config:        cfg,
		logger:        logger,
		store:         store,
		snapshot:      NewSnapshot(store, logger),
		authenticator: authenticator,
	}
}

// Snapshot returns the index source the handlers should read from
func (s *Server) Snapshot() *Snapshot {
	return s.snapshot
}

// Start loads the index, serves until SIGINT or SIGTERM and reloads the
// index on SIGHUP. A missing index is not fatal; queries answer 503 until
// "eix update" has saved one and the server is reloaded.
func (s *Server) Start() error {
	if err := s.snapshot.Reload(context.Background()); err != nil {
		s.logger.Warn("No index loaded at startup", "error", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server",
		"host", s.config.Server.Host,
		"port", s.config.Server.Port,
		"storage_uri", s.config.Storage.URI,
		"auth_type", s.config.Auth.Type,
		"rate_limit", s.config.Server.RateLimit)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(quit)

	for {
		select {
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case sig := <-quit:
			if sig == syscall.SIGHUP {
				s.logger.Info("Reload signal received")
				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				if err := s.snapshot.Reload(ctx); err != nil {
					s.logger.Error("Index reload failed, serving previous index", "error", err)
				}
				cancel()
				continue
			}
			s.logger.Info("Shutdown signal received", "signal", sig.String())
			return s.Shutdown()
		}
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Initiating graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Server shutdown failed", "error", err)
			return err
		}
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Storage close failed", "error", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware (applied to all routes)
	router.Use(middleware.Logging(s.logger))
	router.Use(middleware.NewRateLimiter(s.config.Server.RateLimit))
	router.Use(middleware.CORS())
	router.Use(chimiddleware.GetHead)

	router.Route("/api/v1", func(r chi.Router) {
		// Health stays open so probes work with basic auth enabled
		if s.handlers.Health != nil {
			r.Get("/health", s.handlers.Health)
		}

		r.Group(func(r chi.Router) {
			if s.authenticator != nil {
				r.Use(s.authenticator.Middleware())
			}
			if s.handlers.Metrics != nil {
				r.Get("/metrics", s.handlers.Metrics)
			}

			// GetHead does not reach into subrouters
			r.Route("/packages", func(r chi.Router) {
				if s.handlers.ListPackages != nil {
					r.Get("/", s.handlers.ListPackages)
					r.Head("/", s.handlers.ListPackages)
				}
				r.Route("/{category}/{name}", func(r chi.Router) {
					if s.handlers.GetPackage != nil {
						r.Get("/", s.handlers.GetPackage)
						r.Head("/", s.handlers.GetPackage)
					}
					if s.handlers.GetBest != nil {
						r.Get("/best", s.handlers.GetBest)
						r.Head("/best", s.handlers.GetBest)
					}
				})
			})
		})
	})

	return router
}

// SetHandlers sets all handlers (called from the cli package to avoid an import cycle)
func (s *Server) SetHandlers(handlers HandlerSet) {
	s.handlers = handlers
}
