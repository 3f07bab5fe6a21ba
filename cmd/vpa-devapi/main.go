// vpa-devapi serves an in-memory parking backend for local runs of the client.
//
// Usage: go run ./cmd/vpa-devapi
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vehicle-parking/vpa-client/internal/api"
	"github.com/vehicle-parking/vpa-client/internal/api/handler"
	"github.com/vehicle-parking/vpa-client/internal/devapi"
	"github.com/vehicle-parking/vpa-client/internal/pkg/config"
	"github.com/vehicle-parking/vpa-client/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadDevAPI()
	log := logger.Init(logger.Options{Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := devapi.NewState()
	auth := devapi.NewAuthService(state, cfg.JWTSecret, 24*time.Hour)
	if err := auth.SeedAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}
	parking := devapi.NewParkingService(state, logger.Component("parking"))
	exports := devapi.NewExportService(state, cfg.ExportDir, cfg.ExportWorkers, logger.Component("export"))
	if err := exports.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start export workers")
	}

	e := api.NewRouter(api.Options{
		Auth:        auth,
		Parking:     parking,
		Exports:     exports,
		Ready:       map[string]handler.Checker{"exports": exports},
		JWTSecret:   cfg.JWTSecret,
		RequireAuth: cfg.RequireAuth,
		Log:         logger.Component("http"),
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Bool("require_auth", cfg.RequireAuth).
			Str("export_dir", cfg.ExportDir).
			Msg("dev api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
