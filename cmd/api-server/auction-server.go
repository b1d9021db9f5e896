package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"auctions/db"
	"auctions/db/migrations"
	"auctions/internal/auth"
	"auctions/internal/config"
	"auctions/internal/handlers"
	"auctions/internal/ingest"
	"auctions/internal/lifecycle"
	"auctions/internal/logging"
	"auctions/internal/messaging"
	"auctions/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database.URL, db.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if cfg.Database.Migrate {
		if err := migrations.Run(dbConn.DB); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		version, _ := migrations.Version(dbConn.DB)
		logger.Info("migrations applied", zap.Int64("version", version))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := db.NewStorage(dbConn)
	wa := messaging.New(messaging.Config{
		BaseURL:    cfg.Messaging.BaseURL,
		APIKey:     cfg.Messaging.APIKey,
		Timeout:    cfg.Messaging.Timeout(),
		MaxRetries: cfg.Messaging.MaxRetries,
		RateLimit:  cfg.Messaging.RateLimit,
	}, messaging.WithLogger(logger), messaging.WithMetrics(m))

	h := handlers.NewHandler(store,
		handlers.WithLifecycle(lifecycle.NewCoordinator(store, wa, logger, m)),
		handlers.WithIngestor(ingest.New(store, logger, m)),
		handlers.WithHealthChecker(wa),
		handlers.WithLogger(logger),
	)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, logger)
	if !verifier.Enabled() {
		logger.Warn("JWT_SECRET is not set, admin routes are not protected")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(m.Middleware)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", m.Handler())
	r.Mount("/api", h.Routes(verifier.Middleware))

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
