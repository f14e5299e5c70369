package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PratikDhanave/event-collector/internal/models"
)

// ErrServer means the metadata service could not answer. It is never
// returned for a dataset that simply does not exist.
var ErrServer = errors.New("metadata service error")

// Client talks to the dataset metadata service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient returns a client for baseURL. A nil httpClient gets a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type datasetDocument struct {
	ID           string `json:"Id"`
	AccessRights string `json:"accessRights"`
	Embedded     struct {
		Versions []struct {
			Version string `json:"version"`
		} `json:"versions"`
	} `json:"_embedded"`
}

// Dataset fetches a dataset with its versions embedded.
// It returns nil, nil when the dataset does not exist.
func (c *Client) Dataset(ctx context.Context, datasetID string) (*models.Dataset, error) {
	u := fmt.Sprintf("%s/datasets/%s?embed=versions", c.baseURL, url.PathEscape(datasetID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.logger.Debug("metadata request",
		"dataset_id", datasetID,
		"metadata_get_dataset_duration", time.Since(start),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrServer, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		c.logger.Error("metadata service returned unexpected status",
			"dataset_id", datasetID,
			"metadata_api_response_status_code", resp.StatusCode,
			"metadata_api_response_body", string(body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}

	var doc datasetDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		// A 200 with an unreadable body is reported as not found.
		c.logger.Error("metadata service returned 200 with invalid JSON",
			"url", u,
			"body", string(body),
			"error", err,
		)
		return nil, nil
	}

	ds := &models.Dataset{ID: doc.ID, AccessRights: doc.AccessRights}
	if ds.ID == "" {
		ds.ID = datasetID
	}
	for _, v := range doc.Embedded.Versions {
		ds.Versions = append(ds.Versions, v.Version)
	}
	return ds, nil
}
