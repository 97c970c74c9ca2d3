package loginflow

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/erpinterno/erpadmin/credstore"
	"github.com/erpinterno/erpadmin/session"
)

// fakeSession records calls and returns scripted results.
type fakeSession struct {
	loginErr   error
	profileErr error

	loginCalls   int
	profileCalls int
}

func (f *fakeSession) Login(ctx context.Context, identifier, secret string) (*credstore.Credential, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &credstore.Credential{Token: "tok"}, nil
}

func (f *fakeSession) FetchCurrentProfile(ctx context.Context) (*credstore.Profile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &credstore.Profile{ID: 1, Email: "admin@example.com", Role: "admin"}, nil
}

func authErr(kind session.Kind) error {
	switch kind {
	case session.KindInvalidCredentials:
		return &session.AuthError{Kind: session.KindInvalidCredentials}
	case session.KindNetworkUnreachable:
		return &session.AuthError{Kind: session.KindNetworkUnreachable}
	case session.KindServerError:
		return &session.AuthError{Kind: session.KindServerError}
	}
	return &session.AuthError{Kind: session.KindUnknown}
}

func TestValidateInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateInput("admin@example.com", "changethis"))
	})
	t.Run("empty email", func(t *testing.T) {
		require.Error(t, ValidateInput("", "changethis"))
	})
	t.Run("malformed email", func(t *testing.T) {
		require.Error(t, ValidateInput("not-an-email", "changethis"))
		require.Error(t, ValidateInput("@example.com", "changethis"))
		require.Error(t, ValidateInput("admin@", "changethis"))
	})
	t.Run("short secret", func(t *testing.T) {
		require.Error(t, ValidateInput("admin@example.com", "short"))
	})
}

func TestModel_InvalidInputBlocksNetworkCall(t *testing.T) {
	sess := &fakeSession{}
	m := New(sess, "")
	m.identifier.SetValue("not-an-email")
	m.secret.SetValue("changethis")

	m, cmd := m.submit()
	require.Nil(t, cmd)
	require.NotEmpty(t, m.ErrorMessage())
	require.Zero(t, sess.loginCalls)
}

func TestModel_SubmitSuccessNavigatesToReturnURL(t *testing.T) {
	sess := &fakeSession{}
	m := New(sess, "/bancos?page=2")
	m.identifier.SetValue("admin@example.com")
	m.secret.SetValue("changethis")

	m, cmd := m.submit()
	require.NotNil(t, cmd)
	require.True(t, m.Submitting())

	// The command runs login then the profile fetch.
	result := cmd()
	submitted, ok := result.(submittedMsg)
	require.True(t, ok)
	require.NoError(t, submitted.LoginErr)
	require.Equal(t, 1, sess.loginCalls)
	require.Equal(t, 1, sess.profileCalls)

	m, cmd = m.Update(submitted)
	require.False(t, m.Submitting())
	require.NotNil(t, cmd)

	nav, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	require.Equal(t, "/bancos?page=2", nav.URL)
}

func TestModel_SubmitSuccessDefaultsToLanding(t *testing.T) {
	m := New(&fakeSession{}, "")
	_, cmd := m.Update(submittedMsg{})
	require.NotNil(t, cmd)

	nav, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	require.Equal(t, "/dashboard", nav.URL)
}

func TestModel_LoginFailureShowsMessageAndStays(t *testing.T) {
	tests := []struct {
		name string
		kind session.Kind
		want string
	}{
		{"invalid credentials", session.KindInvalidCredentials, "Email o contraseña incorrectos"},
		{"network unreachable", session.KindNetworkUnreachable, "No se puede conectar con el servidor"},
		{"server error", session.KindServerError, "El servidor ha devuelto un error, inténtelo de nuevo"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New(&fakeSession{}, "")
			m, cmd := m.Update(submittedMsg{LoginErr: authErr(tc.kind)})
			require.Nil(t, cmd)
			require.Equal(t, tc.want, m.ErrorMessage())
		})
	}
}

func TestModel_ProfileFailureStillNavigates(t *testing.T) {
	sess := &fakeSession{profileErr: authErr(session.KindServerError)}
	m := New(sess, "")
	m.identifier.SetValue("admin@example.com")
	m.secret.SetValue("changethis")

	m, cmd := m.submit()
	require.NotNil(t, cmd)

	submitted := cmd().(submittedMsg)
	require.NoError(t, submitted.LoginErr)
	require.Error(t, submitted.ProfileErr)

	m, cmd = m.Update(submitted)
	require.NotNil(t, cmd)
	nav, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	require.Equal(t, "/dashboard", nav.URL)
	require.Empty(t, m.ErrorMessage())
}

func TestModel_KeysIgnoredWhileSubmitting(t *testing.T) {
	m := New(&fakeSession{}, "")
	m.submitting = true

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.True(t, updated.Submitting())
}
