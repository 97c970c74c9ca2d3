// Package loginflow is the user-facing login state machine. It validates
// input locally, drives the session service, and reports where to navigate
// next. Service side effects always complete even if the user has already
// navigated away; only the UI update is dropped for a departed model.
package loginflow

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/erpinterno/erpadmin/credstore"
	"github.com/erpinterno/erpadmin/guard"
	"github.com/erpinterno/erpadmin/session"
)

const (
	minSecretLength = 8
	submitTimeout   = 15 * time.Second
)

// Session is the slice of the session service the login flow drives.
type Session interface {
	Login(ctx context.Context, identifier, secret string) (*credstore.Credential, error)
	FetchCurrentProfile(ctx context.Context) (*credstore.Profile, error)
}

// NavigateMsg asks the shell to navigate to URL. Emitted after a successful
// login: the captured return target, or the default landing page.
type NavigateMsg struct {
	URL string
}

// submittedMsg carries the outcome of the login+profile submit command.
// ProfileErr being set does not block navigation; the user proceeds
// authenticated but profile-less.
type submittedMsg struct {
	LoginErr   error
	ProfileErr error
}

type field int

const (
	fieldIdentifier field = iota
	fieldSecret
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle   = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// Model is the login screen.
type Model struct {
	session   Session
	returnURL string
	landing   string

	identifier textinput.Model
	secret     textinput.Model
	focus      field

	submitting bool
	errMsg     string
	notice     string
}

// New creates the login screen. returnURL is the originally requested
// destination captured by the route guard, empty when the user navigated to
// login directly.
func New(sess Session, returnURL string) Model {
	identifier := textinput.New()
	identifier.Placeholder = "email"
	identifier.CharLimit = 128
	identifier.Focus()

	secret := textinput.New()
	secret.Placeholder = "password"
	secret.CharLimit = 128
	secret.EchoMode = textinput.EchoPassword

	return Model{
		session:    sess,
		returnURL:  returnURL,
		landing:    guard.DefaultLandingRoute,
		identifier: identifier,
		secret:     secret,
	}
}

// Init returns the initial blink command for the focused input.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update advances the login state machine. The shell composes this model,
// so it returns the concrete type.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m = m.toggleFocus()
			return m, nil
		case "enter":
			if m.focus == fieldIdentifier {
				m = m.toggleFocus()
				return m, nil
			}
			return m.submit()
		}
	case submittedMsg:
		m.submitting = false
		if msg.LoginErr != nil {
			m.errMsg = messageFor(msg.LoginErr)
			return m, nil
		}
		if msg.ProfileErr != nil {
			// Logged in but profile-less; navigation proceeds anyway.
			m.notice = "No se pudo cargar el perfil, continuando sin él"
		}
		m.errMsg = ""
		return m, m.navigateCmd()
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldIdentifier:
		m.identifier, cmd = m.identifier.Update(msg)
	case fieldSecret:
		m.secret, cmd = m.secret.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleFocus() Model {
	if m.focus == fieldIdentifier {
		m.focus = fieldSecret
		m.identifier.Blur()
		m.secret.Focus()
	} else {
		m.focus = fieldIdentifier
		m.secret.Blur()
		m.identifier.Focus()
	}
	return m
}

func (m Model) submit() (Model, tea.Cmd) {
	identifier := strings.TrimSpace(m.identifier.Value())
	secret := m.secret.Value()

	// Local constraints first: no network call for input the server would
	// reject anyway.
	if err := ValidateInput(identifier, secret); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	sess := m.session
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		if _, err := sess.Login(ctx, identifier, secret); err != nil {
			return submittedMsg{LoginErr: err}
		}
		_, profileErr := sess.FetchCurrentProfile(ctx)
		return submittedMsg{ProfileErr: profileErr}
	}
}

func (m Model) navigateCmd() tea.Cmd {
	target := m.returnURL
	if target == "" {
		target = m.landing
	}
	return func() tea.Msg {
		return NavigateMsg{URL: target}
	}
}

// Submitting reports whether a login request is in flight.
func (m Model) Submitting() bool {
	return m.submitting
}

// ErrorMessage returns the current inline form error, if any.
func (m Model) ErrorMessage() string {
	return m.errMsg
}

// View renders the login form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Iniciar sesión"))
	b.WriteString("\n")
	b.WriteString(m.identifier.View())
	b.WriteString("\n")
	b.WriteString(m.secret.View())
	b.WriteString("\n")
	if m.submitting {
		b.WriteString(noticeStyle.Render("Conectando..."))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter: entrar · tab: cambiar campo"))
	return b.String()
}

// messageFor maps an AuthError kind to the inline form message. Unreachable
// and server failures get a connectivity notice instead of a credentials
// one.
func messageFor(err error) string {
	switch session.KindOf(err) {
	case session.KindInvalidCredentials:
		return "Email o contraseña incorrectos"
	case session.KindNetworkUnreachable:
		return "No se puede conectar con el servidor"
	case session.KindServerError:
		return "El servidor ha devuelto un error, inténtelo de nuevo"
	default:
		return "No se ha podido iniciar sesión"
	}
}
