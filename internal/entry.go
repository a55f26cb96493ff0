// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quicknote/internal/api"
	"github.com/starford/quicknote/internal/auth"
	"github.com/starford/quicknote/internal/mcpserver"
	"github.com/starford/quicknote/internal/noteservice"
	"github.com/starford/quicknote/internal/ratelimit"
	"github.com/starford/quicknote/internal/sse"
	"github.com/starford/quicknote/internal/store"
	"github.com/starford/quicknote/internal/suggest"
)

const shutdownTimeout = 10 * time.Second

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// openService opens the database and builds the note service on top of it.
// The caller owns the returned database.
func openService(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*noteservice.Service, *store.DB, error) {
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	suggester, err := suggest.New(ctx, cfg.Suggest.Options(), logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init suggester: %w", err)
	}
	opts = append([]noteservice.Option{noteservice.WithLogger(logger)}, opts...)
	return noteservice.NewService(db, suggester, opts...), db, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("suggest_provider", cfg.Suggest.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Token registry.
	registry := auth.NewRegistry(cfg.Auth.Tokens)
	if cfg.Auth.TokensFile != "" {
		if err := registry.LoadFile(cfg.Auth.TokensFile); err != nil {
			return err
		}
	}
	if registry.Len() == 0 {
		logger.Warn("no API tokens configured, every API request will be rejected")
	}

	// SSE broker.
	broker := sse.NewBroker(25 * time.Second)
	defer broker.Close()

	svc, db, err := openService(ctx, cfg, logger, noteservice.WithEventFunc(broker.PublishNoteEvent))
	if err != nil {
		return err
	}
	defer db.Close()

	limiter := ratelimit.NewRateLimiter(ratelimit.Config{
		RPS:   cfg.Suggest.RateLimit.RPS,
		Burst: cfg.Suggest.RateLimit.Burst,
	})
	defer limiter.Stop()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := svc.Ready(r.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc, registry, limiter, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	// Reload tokens when the file changes.
	if cfg.Auth.TokensFile != "" {
		g.Go(func() error {
			err := registry.Watch(gCtx, cfg.Auth.TokensFile, logger, func() {
				logger.Info("tokens reloaded", slog.Int("count", registry.Len()))
			})
			if err != nil {
				return fmt.Errorf("tokens watcher: %w", err)
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams only end when their clients go away or the broker closes.
		broker.Close()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the notes of the configured owner over MCP on stdin/stdout.
// Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if err := cfg.MCP.Validate(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	svc, db, err := openService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("MCP server starting", slog.String("owner", cfg.MCP.Owner))
	return mcpserver.New(svc, cfg.MCP.Owner, app.version).ServeStdio()
}
