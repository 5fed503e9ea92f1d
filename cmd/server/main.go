package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/remora/internal/config"
	"github.com/nfrund/remora/internal/database"
	"github.com/nfrund/remora/internal/logging"
	"github.com/nfrund/remora/internal/pubsub"
	"github.com/nfrund/remora/internal/server"
)

func main() {
	// Configuration first: it loads .env, and the logger's format and level
	// come from the environment.
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.New()

	ctx := context.Background()

	db, err := database.NewDB(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	tracer, otelCleanup, err := pubsub.SetupOTel(ctx, pubsub.TracingConfigFromProvider(cfg))
	if err != nil {
		slog.Error("Failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer otelCleanup()

	bridge := pubsub.NewTracedWatermillBridge(tracer)
	defer bridge.Close()

	s, err := server.New(server.Dependencies{
		Config:     cfg,
		DB:         db,
		Publisher:  bridge,
		Subscriber: bridge,
	})
	if err != nil {
		slog.Error("Failed to assemble server", "error", err)
		os.Exit(1)
	}

	s.RegisterRoutes()

	if err := s.Bootstrap(ctx); err != nil {
		slog.Error("Failed to bootstrap module tree", "error", err)
		os.Exit(1)
	}

	s.Start(cfg.GetAppAddr())
}
