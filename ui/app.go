// Package ui is the interactive admin shell. It owns the route table and
// performs every screen change through the route guard; the session stream
// drives the header and the expired-session redirect.
package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/erpinterno/erpadmin/credstore"
	"github.com/erpinterno/erpadmin/erp"
	"github.com/erpinterno/erpadmin/guard"
	"github.com/erpinterno/erpadmin/loginflow"
	"github.com/erpinterno/erpadmin/session"
)

const loadTimeout = 10 * time.Second

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// userChangedMsg carries a current-user stream emission.
type userChangedMsg struct {
	profile *credstore.Profile
}

// contentMsg carries the rendered body of a data screen.
type contentMsg struct {
	route   string
	content string
	err     error
}

// App is the root model.
type App struct {
	session  *session.Service
	guard    *guard.Guard
	registry *guard.Registry
	erp      *erp.Client

	sub     *session.Subscription
	profile *credstore.Profile

	route      guard.Route
	currentURL string
	login      loginflow.Model
	onLogin    bool
	content    string
	loadErr    error
	notice     string
}

// Routes returns the admin route table: the dashboard and every CRUD list
// screen, with the integrations subtree restricted to admins.
func Routes() *guard.Registry {
	reg := guard.NewRegistry()
	reg.Add(guard.Route{Path: guard.LoginRoute, Title: "Login", Public: true})
	reg.Add(guard.Route{Path: "/dashboard", Title: "Dashboard"})
	reg.Add(guard.Route{Path: "/bancos", Title: "Bancos"})
	reg.Add(guard.Route{Path: "/categorias", Title: "Categorías"})
	reg.Add(guard.Route{Path: "/proveedores", Title: "Proveedores"})
	reg.Add(guard.Route{Path: "/empresas", Title: "Empresas"})
	reg.Add(guard.Route{Path: "/formas-pago", Title: "Formas de pago"})
	reg.Add(guard.Route{Path: "/integraciones", Title: "Integraciones", RequiredRole: "admin"})
	return reg
}

// NewApp creates the shell. The initial navigation goes to the landing page
// and falls through the guard to login when no session is held.
func NewApp(svc *session.Service, g *guard.Guard, registry *guard.Registry, client *erp.Client) *App {
	return &App{
		session:  svc,
		guard:    g,
		registry: registry,
		erp:      client,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.sub = a.session.CurrentUser()
	app, cmd := a.navigate(guard.DefaultLandingRoute)
	*a = app
	return tea.Batch(cmd, a.waitForUser())
}

func (a *App) waitForUser() tea.Cmd {
	sub := a.sub
	return func() tea.Msg {
		profile, ok := <-sub.Updates()
		if !ok {
			return nil
		}
		return userChangedMsg{profile: profile}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.sub.Close()
			return a, tea.Quit
		}
		if a.onLogin {
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg)
			return a, cmd
		}
		return a.handleNavKey(msg)

	case loginflow.NavigateMsg:
		app, cmd := a.navigate(msg.URL)
		*a = app
		return a, cmd

	case userChangedMsg:
		a.profile = msg.profile
		// A nil emission with no token held means the session was
		// invalidated (logout or 401); bounce protected screens to login.
		if msg.profile == nil && !a.session.IsAuthenticated() && !a.route.Public {
			a.notice = "La sesión ha expirado"
			app, cmd := a.navigate(a.currentURL)
			*a = app
			return a, tea.Batch(cmd, a.waitForUser())
		}
		return a, a.waitForUser()

	case contentMsg:
		if msg.route != a.route.Path {
			// Stale load for a screen we already left.
			return a, nil
		}
		a.content = msg.content
		a.loadErr = msg.err
		return a, nil
	}

	if a.onLogin {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleNavKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	targets := map[string]string{
		"1": "/dashboard",
		"2": "/bancos",
		"3": "/categorias",
		"4": "/proveedores",
		"5": "/empresas",
		"6": "/formas-pago",
		"7": "/integraciones",
	}
	if target, ok := targets[msg.String()]; ok {
		app, cmd := a.navigate(target)
		*a = app
		return a, cmd
	}
	if msg.String() == "q" {
		a.sub.Close()
		return a, tea.Quit
	}
	return a, nil
}

// navigate runs the single-shot guard decision and switches screens.
func (a App) navigate(target string) (App, tea.Cmd) {
	path := target
	if u, err := url.Parse(target); err == nil {
		path = u.Path
	}
	route, ok := a.registry.Get(path)
	if !ok {
		a.loadErr = fmt.Errorf("ruta desconocida: %s", path)
		return a, nil
	}

	decision := a.guard.Check(route, target)
	if !decision.Allowed {
		if strings.HasPrefix(decision.RedirectTo, guard.LoginRoute) {
			return a.showLogin(decision.RedirectTo)
		}
		return a.navigate(decision.RedirectTo)
	}

	if route.Path == guard.LoginRoute {
		return a.showLogin(target)
	}

	a.onLogin = false
	a.route = route
	a.currentURL = target
	a.content = ""
	a.loadErr = nil
	return a, a.loadContent(route)
}

func (a App) showLogin(loginURL string) (App, tea.Cmd) {
	a.onLogin = true
	a.route, _ = a.registry.Get(guard.LoginRoute)
	a.currentURL = loginURL
	a.login = loginflow.New(a.session, guard.ReturnURLFrom(loginURL))
	return a, a.login.Init()
}

func (a App) loadContent(route guard.Route) tea.Cmd {
	client := a.erp
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		content, err := renderRoute(ctx, client, route.Path)
		return contentMsg{route: route.Path, content: content, err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("erpadmin"))
	if a.profile != nil {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  %s (%s)", a.profile.Email, a.profile.Role)))
	}
	b.WriteString("\n\n")

	if a.notice != "" {
		b.WriteString(errStyle.Render(a.notice))
		b.WriteString("\n\n")
	}

	if a.onLogin {
		b.WriteString(a.login.View())
		return b.String()
	}

	b.WriteString(headerStyle.Render(a.route.Title))
	b.WriteString("\n")
	if a.loadErr != nil {
		b.WriteString(errStyle.Render(a.loadErr.Error()))
	} else if a.content == "" {
		b.WriteString(faintStyle.Render("Cargando..."))
	} else {
		b.WriteString(a.content)
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("1-7: navegar · q: salir"))
	return b.String()
}
