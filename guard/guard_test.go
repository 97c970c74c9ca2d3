package guard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erpinterno/erpadmin/credstore"
	"github.com/erpinterno/erpadmin/guard"
	"github.com/erpinterno/erpadmin/session"
)

// fakeReader is a SessionReader pinned to a fixed state.
type fakeReader struct {
	status  session.Status
	profile *credstore.Profile
}

func (f *fakeReader) IsAuthenticated() bool {
	return f.status != session.StatusUnauthenticated
}

func (f *fakeReader) Snapshot() (session.Status, *credstore.Profile) {
	return f.status, f.profile
}

func newGuard(t *testing.T, reader guard.SessionReader) *guard.Guard {
	t.Helper()
	g, err := guard.New(reader)
	require.NoError(t, err)
	return g
}

var (
	bancosRoute = guard.Route{Path: "/bancos", Title: "Bancos"}
	adminRoute  = guard.Route{Path: "/integraciones", Title: "Integraciones", RequiredRole: "admin"}
	loginRoute  = guard.Route{Path: "/login", Title: "Login", Public: true}
)

func TestGuard_UnauthenticatedRedirectsToLogin(t *testing.T) {
	g := newGuard(t, &fakeReader{status: session.StatusUnauthenticated})

	d := g.Check(bancosRoute, "/bancos?page=2")
	require.False(t, d.Allowed)
	require.Equal(t, "/login?returnUrl=%2Fbancos%3Fpage%3D2", d.RedirectTo)
	require.Equal(t, "/bancos?page=2", d.ReturnURL)

	require.Equal(t, "/bancos?page=2", guard.ReturnURLFrom(d.RedirectTo))
}

func TestGuard_PublicRouteAlwaysAllowed(t *testing.T) {
	g := newGuard(t, &fakeReader{status: session.StatusUnauthenticated})

	d := g.Check(loginRoute, "/login")
	require.True(t, d.Allowed)
}

func TestGuard_AuthenticatedRoleFreeAllowed(t *testing.T) {
	g := newGuard(t, &fakeReader{
		status:  session.StatusAuthenticated,
		profile: &credstore.Profile{ID: 2, Email: "user@example.com", Role: "user"},
	})

	d := g.Check(bancosRoute, "/bancos")
	require.True(t, d.Allowed)
}

func TestGuard_MissingRoleRedirectsToLanding(t *testing.T) {
	// Already authenticated: denial goes to the landing page, not login.
	g := newGuard(t, &fakeReader{
		status:  session.StatusAuthenticated,
		profile: &credstore.Profile{ID: 2, Email: "user@example.com", Role: "user"},
	})

	d := g.Check(adminRoute, "/integraciones")
	require.False(t, d.Allowed)
	require.Equal(t, guard.DefaultLandingRoute, d.RedirectTo)
	require.Empty(t, d.ReturnURL)
}

func TestGuard_MatchingRoleAllowed(t *testing.T) {
	g := newGuard(t, &fakeReader{
		status:  session.StatusAuthenticated,
		profile: &credstore.Profile{ID: 1, Email: "admin@example.com", Role: "admin"},
	})

	d := g.Check(adminRoute, "/integraciones")
	require.True(t, d.Allowed)
}

func TestGuard_SuperuserBypassesRoleCheck(t *testing.T) {
	g := newGuard(t, &fakeReader{
		status:  session.StatusAuthenticated,
		profile: &credstore.Profile{ID: 1, Email: "root@example.com", Role: "user", IsSuperuser: true},
	})

	d := g.Check(adminRoute, "/integraciones")
	require.True(t, d.Allowed)
}

func TestGuard_PendingProfileDeniesRoleGatedOnly(t *testing.T) {
	// Token held, profile not yet loaded: role unknown.
	g := newGuard(t, &fakeReader{status: session.StatusAuthenticatedPending})

	t.Run("role-gated route denied to landing", func(t *testing.T) {
		d := g.Check(adminRoute, "/integraciones")
		require.False(t, d.Allowed)
		require.Equal(t, guard.DefaultLandingRoute, d.RedirectTo)
	})

	t.Run("role-free protected route allowed", func(t *testing.T) {
		d := g.Check(bancosRoute, "/bancos")
		require.True(t, d.Allowed)
	})
}

func TestGuard_CustomLandingRoute(t *testing.T) {
	g, err := guard.New(
		&fakeReader{
			status:  session.StatusAuthenticated,
			profile: &credstore.Profile{ID: 2, Email: "user@example.com", Role: "user"},
		},
		guard.WithLandingRoute("/inicio"),
	)
	require.NoError(t, err)

	d := g.Check(adminRoute, "/integraciones")
	require.False(t, d.Allowed)
	require.Equal(t, "/inicio", d.RedirectTo)
}

func TestRegistry(t *testing.T) {
	reg := guard.NewRegistry()
	reg.Add(bancosRoute)
	reg.Add(adminRoute)
	reg.Add(loginRoute)

	route, ok := reg.Get("/bancos")
	require.True(t, ok)
	require.Equal(t, "Bancos", route.Title)

	_, ok = reg.Get("/nope")
	require.False(t, ok)

	require.Equal(t, []string{"/bancos", "/integraciones", "/login"}, reg.Paths())
}

func TestReturnURLFrom(t *testing.T) {
	require.Empty(t, guard.ReturnURLFrom("/login"))
	require.Equal(t, "/bancos", guard.ReturnURLFrom("/login?returnUrl=%2Fbancos"))
}
