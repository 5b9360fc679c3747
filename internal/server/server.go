// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and routes:
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go:   config.Load → config.NewLogger → server.New
//	server.New: sqlite.DB ─┬→ UserService           → UserHandler
//	            live.Hub ──┼→ RecommendationService → RecommendationHandler, LiveHandler
//	            TokenService → AuthService          → AuthHandler
//
// This is the "composition root": every dependency is built here and
// nowhere else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/shelf/internal/auth"
	"github.com/sakif/shelf/internal/config"
	"github.com/sakif/shelf/internal/handler"
	"github.com/sakif/shelf/internal/live"
	"github.com/sakif/shelf/internal/middleware"
	sqliteRepo "github.com/sakif/shelf/internal/repository/sqlite"
	"github.com/sakif/shelf/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it after the HTTP
// server has drained, so in-flight transactions can finish first.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	hub    *live.Hub
}

// New opens the database (running migrations) and wires every layer.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		hub:    live.NewHub(),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                              → liveness + DB ping
// GET    /auth/github/login                    → redirect to GitHub   (if configured)
// GET    /auth/github/callback                 → OAuth callback       (if configured)
// POST   /auth/logout                          → clear session cookie
// GET    /auth/session                         → token profile claims (auth required)
// GET    /api/genres                           → genre registry
// GET    /api/links/check?url=                 → link pre-check
// GET    /api/recommendations/latest           → newest
// GET    /api/recommendations/featured         → newest staff picks
// GET    /api/recommendations                  → paged shelf
// GET    /api/recommendations/mine             → caller's own, paged
// POST   /api/recommendations                  → add
// DELETE /api/recommendations/{id}             → remove
// POST   /api/recommendations/{id}/featured    → toggle staff pick
// POST   /api/users/sync                       → upsert caller
// GET    /api/users/me                         → caller or null
// GET    /api/live/{feed}                      → websocket feed
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request (the logger reads it)
//  2. RealIP: extracts real client IP from proxy headers
//  3. Logger: logs each request with timing info
//  4. Recoverer: catches panics and returns 500 instead of crashing
//
// AUTH:
// /api runs OptionalAuth: a valid token puts the identity in the context,
// anything else leaves it empty. The services decide what needs a caller.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTIssuer, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// === Services ===
	userService := service.NewUserService(s.db, config.AdminEmailsFromEnv, s.logger)
	recService := service.NewRecommendationService(s.db, s.hub, s.logger)
	authService := service.NewAuthService(tokens, s.logger)

	// === Handlers ===
	var github handler.GitHubLogin
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	} else {
		s.logger.Warn("GitHub OAuth not configured, login routes disabled")
	}
	authHandler := handler.NewAuthHandler(github, authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	recHandler := handler.NewRecommendationHandler(recService, s.logger)
	liveHandler := handler.NewLiveHandler(recService, s.hub, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
		r.Post("/logout", authHandler.HandleLogout)
		r.With(auth.RequireAuth(tokens)).Get("/session", authHandler.HandleSession)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))

		r.Get("/genres", handler.HandleGenres)
		r.Get("/links/check", handler.HandleLinkCheck)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", recHandler.HandleList)
			r.Post("/", recHandler.HandleCreate)
			r.Get("/latest", recHandler.HandleLatest)
			r.Get("/featured", recHandler.HandleFeatured)
			r.Get("/mine", recHandler.HandleMine)
			r.Delete("/{id}", recHandler.HandleDelete)
			r.Post("/{id}/featured", recHandler.HandleToggleFeatured)
		})

		r.Post("/users/sync", userHandler.HandleSync)
		r.Get("/users/me", userHandler.HandleMe)

		r.Get("/live/{feed}", liveHandler.HandleFeed)
	})

	return nil
}

// handleHealth answers 200 when the database responds, 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (flushes WAL, releases file lock)
//
// Hijacked websocket connections are not tracked by Shutdown; they end
// when the process exits.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
