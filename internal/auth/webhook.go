package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// WebhookAuthorizer checks a webhook token against the webhook service.
// Its HTTP client is expected to carry the service's own credentials; see
// KeycloakClient.
type WebhookAuthorizer struct {
	baseURL string
	http    *http.Client
}

// NewWebhookAuthorizer returns an authorizer for the service at baseURL.
func NewWebhookAuthorizer(baseURL string, httpClient *http.Client) *WebhookAuthorizer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookAuthorizer{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type webhookResponse struct {
	Access bool   `json:"access"`
	Reason string `json:"reason"`
}

// Authorize asks whether the webhook token may write to the dataset.
// A missing token is denied without calling the service.
func (a *WebhookAuthorizer) Authorize(ctx context.Context, cr Credentials) (Decision, error) {
	if cr.WebhookToken == "" {
		return Decision{}, nil
	}

	u := fmt.Sprintf("%s/%s/webhook/%s/authorize?operation=write",
		a.baseURL, url.PathEscape(cr.DatasetID), url.PathEscape(cr.WebhookToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrService, err)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Decision{}, fmt.Errorf("%w: webhook authorize returned %d", ErrService, resp.StatusCode)
	}

	var out webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Decision{}, fmt.Errorf("%w: decode webhook authorize: %v", ErrService, err)
	}
	return Decision{Access: out.Access, Reason: out.Reason}, nil
}

// KeycloakClient returns an HTTP client that authenticates with the OAuth2
// client-credentials grant against a Keycloak realm. base, if non-nil, is
// used for both token and API requests.
func KeycloakClient(ctx context.Context, server, realm, clientID, clientSecret string, base *http.Client) *http.Client {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("%s/auth/realms/%s/protocol/openid-connect/token", strings.TrimRight(server, "/"), realm),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return cfg.Client(ctx)
}
