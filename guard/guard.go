// Package guard gates entry into protected routes. A decision is made in a
// single synchronous pass over the session snapshot: there is no window
// where a navigation is half-approved while a profile fetch is pending.
package guard

import (
	"net/url"

	"github.com/pkg/errors"

	"github.com/erpinterno/erpadmin/credstore"
	"github.com/erpinterno/erpadmin/session"
)

const (
	// LoginRoute is the navigation entry point for unauthenticated users.
	LoginRoute = "/login"
	// DefaultLandingRoute is where authenticated but under-privileged
	// navigation is sent. Never back to login: the user is logged in.
	DefaultLandingRoute = "/dashboard"
	// ReturnURLParam is the query parameter carrying the originally
	// requested destination through the login redirect.
	ReturnURLParam = "returnUrl"
)

// Route describes a navigable screen. An empty RequiredRole means any
// authenticated user may enter; a Public route skips the guard entirely.
type Route struct {
	Path         string
	Title        string
	RequiredRole string
	Public       bool
}

// Decision is the single-shot outcome of a navigation check.
type Decision struct {
	Allowed    bool
	RedirectTo string
	ReturnURL  string
}

// SessionReader is the slice of the session service the guard consumes.
// Reads are synchronous snapshots, never the stream.
type SessionReader interface {
	IsAuthenticated() bool
	Snapshot() (session.Status, *credstore.Profile)
}

// Guard decides whether a navigation may enter a route.
type Guard struct {
	session      SessionReader
	loginRoute   string
	landingRoute string
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLandingRoute overrides the default authenticated landing route.
func WithLandingRoute(route string) GuardOption {
	return func(g *Guard) {
		if route != "" {
			g.landingRoute = route
		}
	}
}

// New creates a route guard over a session.
func New(session SessionReader, options ...GuardOption) (*Guard, error) {
	if session == nil {
		return nil, errors.New("[guard.New] session is required")
	}
	g := &Guard{
		session:      session,
		loginRoute:   LoginRoute,
		landingRoute: DefaultLandingRoute,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Check decides entry into route for a navigation targeting targetURL.
func (g *Guard) Check(route Route, targetURL string) Decision {
	if route.Public {
		return Decision{Allowed: true}
	}

	if !g.session.IsAuthenticated() {
		return Decision{
			Allowed:    false,
			RedirectTo: loginRedirect(g.loginRoute, targetURL),
			ReturnURL:  targetURL,
		}
	}

	if route.RequiredRole == "" {
		return Decision{Allowed: true}
	}

	status, profile := g.session.Snapshot()
	if status != session.StatusAuthenticated || profile == nil {
		// Role unknown while the profile is pending: deny rather than
		// grant speculatively.
		return Decision{Allowed: false, RedirectTo: g.landingRoute}
	}
	if profile.Role != route.RequiredRole && !profile.IsSuperuser {
		return Decision{Allowed: false, RedirectTo: g.landingRoute}
	}
	return Decision{Allowed: true}
}

func loginRedirect(loginRoute, targetURL string) string {
	if targetURL == "" {
		return loginRoute
	}
	q := url.Values{}
	q.Set(ReturnURLParam, targetURL)
	return loginRoute + "?" + q.Encode()
}

// ReturnURLFrom extracts the return target from a login navigation URL, or
// empty when none was captured.
func ReturnURLFrom(loginURL string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(ReturnURLParam)
}
