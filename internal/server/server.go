// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the store, the identity resolver, the
// ledger, and the handlers are all wired together here. Each layer only
// receives what it needs — the services get the repository interfaces, the
// handlers get the services, and nothing below the handlers knows HTTP.
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

	"github.com/karhu/shaker/internal/handler"
	"github.com/karhu/shaker/internal/middleware"
	sqliteRepo "github.com/karhu/shaker/internal/repository/sqlite"
	"github.com/karhu/shaker/internal/service"
)

// Config holds server configuration.
type Config struct {
	Addr   string // address to listen on, e.g. "127.0.0.1:9001"
	DBPath string // path to the SQLite database file
	Token  string // shared request token; empty disables the gate
}

// Server represents the HTTP server and its dependencies. It owns the
// database connection and closes it during shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config, opening the store and
// wiring the full dependency chain.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /users/count           → number of distinct users (text)
//	GET  /users/names           → newline-joined display names (text)
//	POST /handshakes            → record a handshake (form in, JSON out)
//	GET  /handshakes/count      → total handshakes (text)
//	GET  /handshakes/count/user → handshakes for one identity (text or 404)
//
// Every route sits behind the token gate; the gate is a no-op when no token
// is configured.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.RequireToken(s.config.Token))

	identity := service.NewIdentityService(s.db.Users(), s.logger)
	ledger := service.NewLedgerService(identity, s.db.Users(), s.db.Handshakes(), s.logger)
	shakes := handler.NewHandshakeHandler(ledger, s.logger)
	users := handler.NewUserHandler(ledger, s.logger)

	s.router.Get("/users/count", users.HandleCount)
	s.router.Get("/users/names", users.HandleListNames)
	s.router.Post("/handshakes", shakes.HandleCreate)
	s.router.Get("/handshakes/count", shakes.HandleCount)
	s.router.Get("/handshakes/count/user", shakes.HandleCountForUser)
}

// Start starts the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
// On SIGINT/SIGTERM we stop accepting connections, give in-flight requests
// 30 seconds to finish, then close the database (which flushes the WAL and
// releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	if s.config.Token == "" {
		s.logger.Warn("no token configured - requests will not be required to authenticate")
	}

	srv := &http.Server{
		Addr:         s.config.Addr,
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
			slog.String("addr", s.config.Addr),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
