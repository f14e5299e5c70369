package stream

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/PratikDhanave/event-collector/internal/metrics"
	"github.com/PratikDhanave/event-collector/internal/models"
)

// Transport submits a batch of records to a named stream.
//
// The returned Outcome covers exactly the given records, in order. A non-nil
// error means the call itself failed; per-record rejections are reported in
// the Outcome instead.
type Transport interface {
	PutRecords(ctx context.Context, streamName string, records []models.Record) (models.Outcome, error)
}

// Publisher submits records and resubmits the ones the stream rejected.
type Publisher struct {
	transport Transport
	backoff   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithBackoff waits d (plus up to 25% jitter) between retry rounds.
// Zero means retries are immediate.
func WithBackoff(d time.Duration) PublisherOption {
	return func(p *Publisher) { p.backoff = d }
}

// WithLogger sets the logger used for retry rounds.
func WithLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the collectors updated on every submission.
func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		if m != nil {
			p.metrics = m
		}
	}
}

// NewPublisher returns a Publisher writing through t.
func NewPublisher(t Transport, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		transport: t,
		logger:    slog.Default(),
		metrics:   metrics.New(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish submits records to streamName. When the stream rejects some of
// them, only the rejected subset is resubmitted, as a single batch, until
// nothing fails or maxRetries resubmissions have been made. At most
// maxRetries+1 transport calls are made.
//
// It returns the outcome of the last submission and the records that were
// still failing when the budget ran out. A non-empty stillFailed slice is a
// normal result, not an error. A transport error aborts immediately and no
// outcome is returned.
func (p *Publisher) Publish(
	ctx context.Context,
	streamName string,
	records []models.Record,
	maxRetries int,
) (models.Outcome, []models.Record, error) {

	if len(records) == 0 {
		return models.Outcome{}, nil, nil
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	start := time.Now()
	defer func() { p.metrics.PublishDuration.Observe(time.Since(start).Seconds()) }()

	pending := records
	for attempt := 1; ; attempt++ {
		p.metrics.PublishAttempts.Inc()

		outcome, err := p.transport.PutRecords(ctx, streamName, pending)
		if err != nil {
			return models.Outcome{}, nil, fmt.Errorf("put records to %s (attempt %d): %w", streamName, attempt, err)
		}
		if outcome.FailedCount == 0 {
			return outcome, nil, nil
		}
		if len(outcome.Results) != len(pending) {
			return models.Outcome{}, nil, fmt.Errorf(
				"put records to %s: %w: got %d results for %d records",
				streamName, ErrOutcomeMismatch, len(outcome.Results), len(pending),
			)
		}

		failed := ExtractFailed(outcome, pending)
		p.metrics.RecordsFailed.Add(float64(len(failed)))
		if len(failed) == 0 {
			return outcome, nil, nil
		}

		if maxRetries == 0 {
			p.metrics.RecordsUnresolved.Add(float64(len(failed)))
			p.logger.Warn("retry budget exhausted",
				"stream_name", streamName,
				"attempt", attempt,
				"failed_records", len(failed),
			)
			return outcome, failed, nil
		}

		p.logger.Info("resubmitting failed records",
			"stream_name", streamName,
			"attempt", attempt,
			"failed_records", len(failed),
			"retries_left", maxRetries,
		)

		if err := p.wait(ctx); err != nil {
			return models.Outcome{}, nil, fmt.Errorf("put records to %s: %w", streamName, err)
		}
		pending = failed
		maxRetries--
	}
}

func (p *Publisher) wait(ctx context.Context) error {
	if p.backoff <= 0 {
		return nil
	}
	d := p.backoff
	if quarter := int64(d / 4); quarter > 0 {
		d += time.Duration(rand.Int63n(quarter))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExtractFailed returns the submitted records whose result is marked failed,
// in their original order. Duplicated records appear once per failing
// position.
//
// outcome.Results must be index-aligned with submitted; a length mismatch is
// a programming error and panics.
func ExtractFailed(outcome models.Outcome, submitted []models.Record) []models.Record {
	if len(outcome.Results) != len(submitted) {
		panic(fmt.Sprintf("stream: outcome has %d results for %d records", len(outcome.Results), len(submitted)))
	}

	var failed []models.Record
	for i, r := range outcome.Results {
		if r.Failed() {
			failed = append(failed, submitted[i])
		}
	}
	return failed
}
