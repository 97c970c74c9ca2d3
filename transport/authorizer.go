// Package transport implements the request authorizer: an http.RoundTripper
// that attaches the session credential to every outgoing request except the
// public allow-list, and centralizes 401 handling. CRUD collaborators issue
// plain requests through a client built on this transport and never touch
// the Authorization header themselves.
package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionControl is the slice of the session service the authorizer needs:
// the token accessor and the idempotent logout.
type SessionControl interface {
	Token() (scheme, token string, ok bool)
	Logout()
}

// Authorizer injects the stored credential into outgoing requests and
// invalidates the session on a 401 response. The original response is always
// propagated to the caller so it can stop its own loading state; nothing is
// swallowed here.
type Authorizer struct {
	base      http.RoundTripper
	session   SessionControl
	allowlist *Allowlist
	logger    zerolog.Logger
}

// AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithBase sets the underlying round tripper (default http.DefaultTransport).
func WithBase(base http.RoundTripper) AuthorizerOption {
	return func(a *Authorizer) {
		a.base = base
	}
}

// WithAllowlist replaces the public-endpoint allow-list.
func WithAllowlist(allowlist *Allowlist) AuthorizerOption {
	return func(a *Authorizer) {
		a.allowlist = allowlist
	}
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) AuthorizerOption {
	return func(a *Authorizer) {
		a.logger = logger
	}
}

// NewAuthorizer creates the request authorizer around a session.
func NewAuthorizer(session SessionControl, options ...AuthorizerOption) (*Authorizer, error) {
	if session == nil {
		return nil, errors.New("[NewAuthorizer] session is required")
	}
	a := &Authorizer{
		base:      http.DefaultTransport,
		session:   session,
		allowlist: NewAllowlist(),
		logger:    log.Logger,
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// Client returns an http.Client that routes through the authorizer.
func (a *Authorizer) Client() *http.Client {
	return &http.Client{Transport: a}
}

// RoundTrip implements http.RoundTripper.
func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	public := a.allowlist.Match(req.URL.Path)

	// The incoming request is never mutated; the contract requires a clone.
	out := req.Clone(req.Context())
	out.Header.Set("X-Request-ID", uuid.NewString())
	if !public {
		if scheme, token, ok := a.session.Token(); ok {
			out.Header.Set("Authorization", scheme+" "+token)
		}
	}

	start := time.Now()
	resp, err := a.base.RoundTrip(out)
	if err != nil {
		a.logger.Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("request failed")
		return nil, err
	}

	a.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request")

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// Only a 401 on an authenticated route invalidates the session.
		// Logout is idempotent, so N in-flight requests observing 401
		// collapse to one effective transition.
		if !public {
			a.logger.Warn().
				Str("path", req.URL.Path).
				Msg("session expired, logging out")
			a.session.Logout()
		}
	case http.StatusForbidden:
		a.logger.Warn().
			Str("path", req.URL.Path).
			Msg("permission denied, session remains valid")
	}

	return resp, nil
}

var _ http.RoundTripper = (*Authorizer)(nil)
