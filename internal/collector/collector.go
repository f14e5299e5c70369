package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/PratikDhanave/event-collector/internal/auth"
	"github.com/PratikDhanave/event-collector/internal/metrics"
	"github.com/PratikDhanave/event-collector/internal/models"
	"github.com/PratikDhanave/event-collector/internal/schema"
	"github.com/PratikDhanave/event-collector/internal/stream"
)

// Response messages.
const (
	msgOK             = "Ok"
	msgForbidden      = "Forbidden"
	msgInternal       = "Internal server error"
	msgInvalidJSON    = "Body is not a valid JSON document"
	msgSchema         = "JSON document does not conform to the given schema"
	msgFailedElements = "Request failed for some elements"
)

// DefaultMaxRetries is the resubmission budget used when none is configured.
const DefaultMaxRetries = 3

// DatasetLookup fetches a dataset and its versions; nil means not found.
type DatasetLookup interface {
	Dataset(ctx context.Context, datasetID string) (*models.Dataset, error)
}

// BodyValidator parses a request body into events.
type BodyValidator interface {
	Validate(body []byte) ([]models.Event, error)
}

// StreamNamer picks the destination stream for a dataset version.
type StreamNamer interface {
	Name(ctx context.Context, datasetID, version, confidentiality string) (string, error)
}

// RecordPublisher submits records with bounded retries.
type RecordPublisher interface {
	Publish(ctx context.Context, streamName string, records []models.Record, maxRetries int) (models.Outcome, []models.Record, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Authorizer auth.Authorizer
	Datasets   DatasetLookup
	Validator  BodyValidator
	Router     StreamNamer
	Publisher  RecordPublisher
	Encoder    stream.Encoder
	MaxRetries int
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Request is one inbound events submission.
type Request struct {
	DatasetID   string
	Version     string
	Credentials auth.Credentials
	Body        []byte
}

// Result is the status code and JSON body to send back.
type Result struct {
	StatusCode int
	Body       models.Response
}

// Service runs the events submission flow:
// authorize, look up the dataset version, validate the body, publish.
// Each step short-circuits with its own response.
type Service struct {
	deps Deps
}

// New returns a Service. A negative MaxRetries is treated as zero.
func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	if deps.MaxRetries < 0 {
		deps.MaxRetries = 0
	}
	return &Service{deps: deps}
}

// PostEvents handles one request. It always returns a Result; failures of
// collaborators are mapped to status codes here and never returned as errors.
func (s *Service) PostEvents(ctx context.Context, req Request) (res Result) {
	log := s.deps.Logger.With("dataset_id", req.DatasetID, "version", req.Version)
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling events", "panic", fmt.Sprint(r))
			res = errorResult(http.StatusInternalServerError, msgInternal)
		}
		s.deps.Metrics.Requests.WithLabelValues(strconv.Itoa(res.StatusCode)).Inc()
	}()

	cr := req.Credentials
	cr.DatasetID, cr.Version = req.DatasetID, req.Version

	start := time.Now()
	decision, err := s.deps.Authorizer.Authorize(ctx, cr)
	log = log.With("authorize_duration", time.Since(start))
	if err != nil {
		log.Error("authorization failed", "error", err)
		return errorResult(http.StatusInternalServerError, msgInternal)
	}
	log = log.With("has_access", decision.Access)
	if !decision.Access {
		log.Info("access denied", "reason", decision.Reason)
		msg := decision.Reason
		if msg == "" {
			msg = msgForbidden
		}
		return errorResult(http.StatusForbidden, msg)
	}

	start = time.Now()
	dataset, err := s.deps.Datasets.Dataset(ctx, req.DatasetID)
	log = log.With("metadata_get_dataset_duration", time.Since(start))
	if err != nil {
		log.Error("dataset lookup failed", "error", err)
		return errorResult(http.StatusInternalServerError, msgInternal)
	}
	if !dataset.HasVersion(req.Version) {
		log.Info("dataset version not found")
		return notFoundResult(req.DatasetID, req.Version)
	}

	events, err := s.deps.Validator.Validate(req.Body)
	switch {
	case errors.Is(err, schema.ErrInvalidJSON):
		log.Info("rejected body", "error", err)
		return errorResult(http.StatusBadRequest, msgInvalidJSON)
	case errors.Is(err, schema.ErrSchemaViolation):
		log.Info("rejected body", "error", err)
		return errorResult(http.StatusBadRequest, msgSchema)
	case err != nil:
		log.Error("body validation failed", "error", err)
		return errorResult(http.StatusInternalServerError, msgInternal)
	}
	log = log.With("num_events", len(events))
	s.deps.Metrics.EventsReceived.Add(float64(len(events)))

	return s.send(ctx, log, dataset, req.Version, events)
}

func (s *Service) send(ctx context.Context, log *slog.Logger, dataset *models.Dataset, version string, events []models.Event) Result {
	streamName, err := s.deps.Router.Name(ctx, dataset.ID, version, dataset.AccessRights)
	if err != nil {
		log.Error("could not route events", "confidentiality", dataset.AccessRights, "error", err)
		return errorResult(http.StatusInternalServerError, msgInternal)
	}
	log = log.With("confidentiality", dataset.AccessRights, "stream_name", streamName)

	records := s.deps.Encoder.Encode(events)

	start := time.Now()
	_, failed, err := s.deps.Publisher.Publish(ctx, streamName, records, s.deps.MaxRetries)
	log = log.With("kinesis_put_records_duration", time.Since(start))
	if err != nil {
		log.Error("publishing events failed", "error", err)
		return errorResult(http.StatusInternalServerError, msgInternal)
	}

	if len(failed) > 0 {
		log.Error("some events were not published", "failed_records", len(failed))
		elements := make([]json.RawMessage, len(failed))
		for i, r := range failed {
			elements[i] = json.RawMessage(stream.Decode(r))
		}
		return Result{
			StatusCode: http.StatusInternalServerError,
			Body:       models.Response{Message: msgFailedElements, FailedElements: elements},
		}
	}

	log.Info("events published")
	return Result{StatusCode: http.StatusOK, Body: models.Response{Message: msgOK}}
}

func errorResult(status int, msg string) Result {
	return Result{StatusCode: status, Body: models.Response{Message: msg}}
}

func notFoundResult(datasetID, version string) Result {
	return errorResult(http.StatusNotFound,
		fmt.Sprintf("Dataset with id:%s and version:%s does not exist", datasetID, version))
}
