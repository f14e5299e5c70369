package auth

import (
	"context"
	"errors"
)

// ErrService means an authorization service could not be reached or answered
// with something other than a decision.
var ErrService = errors.New("authorization service error")

// Decision is an authorization answer. Reason is optional and only set by
// services that explain denials.
type Decision struct {
	Access bool
	Reason string
}

// Authorizer decides whether the caller may write to the dataset version.
type Authorizer interface {
	Authorize(ctx context.Context, cr Credentials) (Decision, error)
}

// Modes accepted by AUTH_MODE.
const (
	ModeBearer  = "bearer"
	ModeWebhook = "webhook"
)
