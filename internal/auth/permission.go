package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const writeScope = "okdata:dataset:write"

// PermissionAuthorizer checks a bearer token against the permission service.
type PermissionAuthorizer struct {
	baseURL string
	http    *http.Client
}

// NewPermissionAuthorizer returns an authorizer for the service at baseURL.
func NewPermissionAuthorizer(baseURL string, httpClient *http.Client) *PermissionAuthorizer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &PermissionAuthorizer{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type checkRequest struct {
	Scope        string `json:"scope"`
	ResourceName string `json:"resource_name"`
}

type checkResponse struct {
	Access bool `json:"access"`
}

// Authorize asks whether the bearer token has write scope on the dataset.
// A missing token is denied without calling the service.
func (a *PermissionAuthorizer) Authorize(ctx context.Context, cr Credentials) (Decision, error) {
	if cr.BearerToken == "" {
		return Decision{}, nil
	}

	payload, err := json.Marshal(checkRequest{
		Scope:        writeScope,
		ResourceName: "okdata:dataset:" + cr.DatasetID,
	})
	if err != nil {
		return Decision{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/check", bytes.NewReader(payload))
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cr.BearerToken)

	resp, err := a.http.Do(req)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	// The service answers 401/403 for tokens it does not recognise.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Decision{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Decision{}, fmt.Errorf("%w: permission check returned %d", ErrService, resp.StatusCode)
	}

	var out checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Decision{}, fmt.Errorf("%w: decode permission check: %v", ErrService, err)
	}
	return Decision{Access: out.Access}, nil
}
