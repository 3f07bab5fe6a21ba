// vpa is the interactive parking client.
//
// Usage: go run ./cmd/vpa
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
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/adapters/repl"
	"github.com/vehicle-parking/vpa-client/internal/app"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
	"github.com/vehicle-parking/vpa-client/internal/infrastructure/apiclient"
	mongostore "github.com/vehicle-parking/vpa-client/internal/infrastructure/db/mongo"
	redisstore "github.com/vehicle-parking/vpa-client/internal/infrastructure/db/redis"
	"github.com/vehicle-parking/vpa-client/internal/infrastructure/storage"
	"github.com/vehicle-parking/vpa-client/internal/pkg/config"
	"github.com/vehicle-parking/vpa-client/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("open storage")
	}

	client := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBase,
		Storage: store,
		Timeout: cfg.HTTPTimeout,
		Log:     logger.Component("apiclient"),
	})

	a, err := app.New(app.Options{
		API:            client,
		Storage:        store,
		RestoreSession: cfg.RestoreSession,
		Log:            log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build app")
	}
	a.OnClose(closeStore)
	if cfg.MetricsAddr != "" {
		a.OnClose(serveMetrics(cfg.MetricsAddr, log))
	}

	log.Info().Str("api", client.BaseURL()).Str("storage", cfg.Storage.Backend).Msg("client starting")

	nav, err := a.Bootstrap(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("bootstrap")
	}
	runErr := repl.New(a, os.Stdin, os.Stdout).Run(ctx, nav)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("repl")
	}
}

// openStorage builds the configured credential storage and its teardown.
func openStorage(ctx context.Context, cfg config.StorageConfig) (ports.Storage, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Backend {
	case config.StorageMemory:
		return storage.NewMemory(), noop, nil

	case config.StorageRedis:
		s, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.StorageMongo:
		s, err := mongostore.Open(ctx, mongostore.Options{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.StorageFile:
		return storage.NewFile(cfg.FilePath), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// serveMetrics exposes the default Prometheus registry and returns its shutdown.
func serveMetrics(addr string, log zerolog.Logger) func(context.Context) error {
	e := newMetricsServer()

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics listening")
	return e.Shutdown
}

func newMetricsServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}
