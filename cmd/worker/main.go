package main

import (
	"context"
	"time"

	"github.com/ngocvh/backend-cho/internal/app"
	"github.com/ngocvh/backend-cho/internal/config"
	"github.com/ngocvh/backend-cho/internal/notify"
	"github.com/ngocvh/backend-cho/internal/obs"
	"github.com/ngocvh/backend-cho/internal/store"
)

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger("json", "info").With().Str("service", "cho-worker").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := app.NewPostgresPool(ctx, cfg.DatabaseURL, "cho-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("database unavailable")
	}
	defer pool.Close()

	worker := &notify.Worker{
		Store: store.New(pool),
		Relay: notify.NewRelay(cfg.PushRelayURL, cfg.PushRequestTimeout),
		Log:   logger,
	}

	srv, err := app.NewTaskServer(cfg.RedisURL, cfg.PushQueue, cfg.WorkerConcurrency, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task server")
	}

	logger.Info().Str("queue", cfg.PushQueue).Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Run(worker.Mux()); err != nil {
		logger.Fatal().Err(err).Msg("worker exited unexpectedly")
	}
}
