package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/PratikDhanave/event-collector/internal/auth"
	"github.com/PratikDhanave/event-collector/internal/collector"
	"github.com/PratikDhanave/event-collector/internal/config"
	"github.com/PratikDhanave/event-collector/internal/metadata"
	"github.com/PratikDhanave/event-collector/internal/metrics"
	"github.com/PratikDhanave/event-collector/internal/routing"
	"github.com/PratikDhanave/event-collector/internal/schema"
	"github.com/PratikDhanave/event-collector/internal/store"
	"github.com/PratikDhanave/event-collector/internal/stream"
)

// App is the wired service shared by the HTTP server and the Lambda handler.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    *store.PostgresStore
	Registry *prometheus.Registry
	Service  *collector.Service
}

// NewLogger returns the JSON logger used by both binaries.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// New connects to Postgres and AWS and builds the request flow.
// Close must be called to release the database pool.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	// Durable routing config (Postgres); self-bootstraps its table.
	st, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := st.EnsureSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	transport, err := stream.DialKinesis(ctx, cfg.AWSRegion)
	if err != nil {
		st.Close()
		return nil, err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		st.Close()
		return nil, err
	}

	router, err := routing.NewRouter(st, cfg.RoutingCacheSize, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	svc := collector.New(collector.Deps{
		Authorizer: newAuthorizer(ctx, cfg, httpClient),
		Datasets:   metadata.NewClient(cfg.MetadataAPIURL, httpClient, logger),
		Validator:  validator,
		Router:     router,
		Publisher: stream.NewPublisher(transport,
			stream.WithBackoff(cfg.RetryBackoff),
			stream.WithLogger(logger),
			stream.WithMetrics(m),
		),
		Encoder:    stream.Encoder{NewlineDelimited: cfg.NewlineDelimited},
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
		Metrics:    m,
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		Registry: reg,
		Service:  svc,
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Store.Close()
}

func newAuthorizer(ctx context.Context, cfg config.Config, httpClient *http.Client) auth.Authorizer {
	if cfg.AuthMode == auth.ModeWebhook {
		client := auth.KeycloakClient(ctx, cfg.KeycloakServer, cfg.KeycloakRealm, cfg.ClientID, cfg.ClientSecret, httpClient)
		return auth.NewWebhookAuthorizer(cfg.WebhookAPIURL, client)
	}
	return auth.NewPermissionAuthorizer(cfg.PermissionAPIURL, httpClient)
}
