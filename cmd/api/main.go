package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/PratikDhanave/event-collector/internal/app"
	"github.com/PratikDhanave/event-collector/internal/config"
	"github.com/PratikDhanave/event-collector/internal/httpserver"
)

// main boots the service: config → DB → schema → AWS → HTTP server.
func main() {
	// Load runtime config from environment (DB_URL, AUTH_MODE, ...).
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := app.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	// Build HTTP router (public health/metrics + events API).
	router := httpserver.NewRouter(a.Store, a.Service, a.Registry)

	logger.Info("server started", "addr", cfg.ListenAddr, "auth_mode", cfg.AuthMode)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
