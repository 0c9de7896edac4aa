package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/team-draft-backend/internal/config"
	"github.com/DoyleJ11/team-draft-backend/internal/httpapi"
	"github.com/DoyleJ11/team-draft-backend/internal/hub"
	"github.com/DoyleJ11/team-draft-backend/internal/random"
	"github.com/DoyleJ11/team-draft-backend/internal/roster"
	"github.com/DoyleJ11/team-draft-backend/internal/store"
	"github.com/DoyleJ11/team-draft-backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("TEAMDRAFT_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := store.Open(ctx, store.Options{
		Driver:        cfg.Store.Driver,
		RedisAddr:     cfg.Store.RedisAddr,
		RedisPassword: cfg.Store.RedisPassword,
		RedisDB:       cfg.Store.RedisDB,
		TTL:           cfg.GetStoreTTL(),
		DatabaseURL:   cfg.Store.DatabaseURL,
	}, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var rngCfg *random.Config
	if cfg.Draft.Seed != 0 {
		rngCfg = &random.Config{Seed: cfg.Draft.Seed}
	}

	h := hub.NewHub(ctx, hub.Config{
		Repo:         repo,
		Rand:         random.New(rngCfg),
		Logger:       logger,
		SpinDuration: cfg.GetSpinDuration(),
	})

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(&httpapi.Deps{
		Hub:            h,
		Repo:           repo,
		Ingester:       roster.NewIngester(logger),
		Logger:         logger,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		WS: ws.Options{
			MessagesPerSecond: cfg.WS.MessagesPerSecond,
			Burst:             cfg.WS.Burst,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		h.Shutdown()
		return multierr.Combine(err, repo.Close())
	})

	return g.Wait()
}
