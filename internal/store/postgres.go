package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// EventStream is one versioned routing configuration for a dataset version.
// ID has the form "<datasetId>/<version>".
type EventStream struct {
	ID            string
	ConfigVersion int
	SinkType      string
	CreatedBy     string
	CreatedAt     time.Time
}

// PostgresStore holds the event-stream routing configuration.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// LatestEventStream returns the configuration with the highest config_version
// for id, or nil when none exists.
func (p *PostgresStore) LatestEventStream(ctx context.Context, id string) (*EventStream, error) {
	var es EventStream
	err := p.pool.QueryRow(ctx, `
		SELECT id, config_version, sink_type, created_by, created_at
		FROM event_streams
		WHERE id=$1
		ORDER BY config_version DESC
		LIMIT 1
	`, id).Scan(&es.ID, &es.ConfigVersion, &es.SinkType, &es.CreatedBy, &es.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &es, nil
}

// PutEventStream stores a configuration version. An existing
// (id, config_version) pair is left untouched and inserted=false is returned.
func (p *PostgresStore) PutEventStream(ctx context.Context, es EventStream) (bool, error) {
	if es.ID == "" {
		return false, errors.New("event stream id required")
	}

	tag, err := p.pool.Exec(ctx, `
		INSERT INTO event_streams(id, config_version, sink_type, created_by)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id, config_version) DO NOTHING
	`, es.ID, es.ConfigVersion, es.SinkType, es.CreatedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
