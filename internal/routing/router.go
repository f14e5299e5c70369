package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/PratikDhanave/event-collector/internal/store"
)

// Stage tokens used in stream names.
const (
	StageIncoming = "incoming"
	StageRaw      = "raw"
)

// ErrUnknownConfidentiality is returned for access rights without a tag.
var ErrUnknownConfidentiality = errors.New("unknown confidentiality")

var confidentialityTags = map[string]string{
	"public":     "green",
	"restricted": "yellow",
	"non-public": "red",
}

// Tag maps a dataset's access rights to its stream colour.
func Tag(confidentiality string) (string, error) {
	tag, ok := confidentialityTags[confidentiality]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownConfidentiality, confidentiality)
	}
	return tag, nil
}

// EventStreamLookup returns the newest routing configuration for id,
// or nil when there is none. *store.PostgresStore implements it.
type EventStreamLookup interface {
	LatestEventStream(ctx context.Context, id string) (*store.EventStream, error)
}

// Router computes destination stream names.
//
// Stage lookups go through an optional LRU cache. Entries never expire; a
// stale stage is acceptable and a miss just repeats the lookup.
type Router struct {
	lookup EventStreamLookup
	cache  *lru.Cache[string, string]
	logger *slog.Logger
}

// NewRouter returns a Router backed by lookup. cacheSize <= 0 disables caching.
func NewRouter(lookup EventStreamLookup, cacheSize int, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{lookup: lookup, logger: logger}
	if cacheSize > 0 {
		c, err := lru.New[string, string](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("routing cache: %w", err)
		}
		r.cache = c
	}
	return r, nil
}

// Name returns "dp.<tag>.<datasetID>.<stage>.<version>.json".
func (r *Router) Name(ctx context.Context, datasetID, version, confidentiality string) (string, error) {
	tag, err := Tag(confidentiality)
	if err != nil {
		return "", err
	}
	stage, err := r.Stage(ctx, datasetID, version)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("dp.%s.%s.%s.%s.json", tag, datasetID, stage, version), nil
}

// Stage is StageRaw when a routing configuration exists for the dataset
// version and StageIncoming otherwise.
func (r *Router) Stage(ctx context.Context, datasetID, version string) (string, error) {
	key := datasetID + "/" + version
	if r.cache != nil {
		if stage, ok := r.cache.Get(key); ok {
			return stage, nil
		}
	}

	start := time.Now()
	es, err := r.lookup.LatestEventStream(ctx, key)
	r.logger.Debug("event stream lookup",
		"event_stream_id", key,
		"get_event_stream_duration", time.Since(start),
	)
	if err != nil {
		return "", fmt.Errorf("lookup event stream %s: %w", key, err)
	}

	stage := StageIncoming
	if es != nil {
		stage = StageRaw
	}
	if r.cache != nil {
		r.cache.Add(key, stage)
	}
	return stage, nil
}
