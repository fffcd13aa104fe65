// Storefront server - serves the shop's cart, wishlist and catalog over a
// JSON API, a server-sent event stream and MCP, backed by the remote
// e-commerce API.
package main

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"shopfront/internal/api"
	"shopfront/internal/config"
	"shopfront/internal/handler"
	"shopfront/internal/localstore"
	"shopfront/internal/metrics"
	"shopfront/internal/session"
	"shopfront/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("guest_storage", cfg.GuestStorage),
		slog.Bool("chrome_tls", cfg.ChromeTLS),
		slog.Bool("merge_guest_wishlist", cfg.MergeGuestWishlist),
	)
	if cfg.EphemeralSecret {
		logger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	breaker := transport.DefaultBreakerConfig("shopfront-api")
	breaker.OnStateChange = m.BreakerState
	breaker.Logger = logger
	client, err := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Transport: transport.New(transport.Options{
			Timeout:   cfg.APITimeout,
			ChromeTLS: cfg.ChromeTLS,
			Breaker:   &breaker,
		}),
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	guest, closeGuest, err := openGuestStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening guest storage: %w", err)
	}
	defer func() {
		if err := closeGuest(); err != nil {
			logger.Warn("closing guest storage", slog.String("error", err.Error()))
		}
	}()

	sessions := session.NewManager(session.Config{
		Backend:            client,
		Guest:              guest,
		TTL:                cfg.SessionTTL,
		MergeGuestWishlist: cfg.MergeGuestWishlist,
		Metrics:            m,
		Logger:             logger,
	})
	signer, err := session.NewSigner(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating session signer: %w", err)
	}

	h := handler.New(handler.Options{
		Backend:          client,
		Sessions:         sessions,
		Signer:           signer,
		Metrics:          m,
		Gatherer:         reg,
		MinClientVersion: cfg.MinClientVersion,
		PublicBaseURL:    cfg.PublicBaseURL,
		SecureCookies:    cfg.IsProduction(),
		SessionTTL:       cfg.SessionTTL,
		Logger:           logger,
	})

	// Create HTTP server with timeouts. The event stream clears its own
	// write deadline.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sessions.Run(sweepCtx)

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
			slog.String("api", client.BaseURL()),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// openGuestStorage opens the configured guest wishlist backend. The
// returned closer releases it on shutdown.
func openGuestStorage(ctx context.Context, cfg *config.Config) (localstore.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.GuestStorage {
	case config.StorageFile:
		f, err := localstore.NewFile(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil
	case config.StorageRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		r, err := localstore.DialRedis(dialCtx, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return localstore.NewMemory(), noop, nil
	}
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
