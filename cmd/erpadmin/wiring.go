package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/erpinterno/erpadmin/credstore"
	"github.com/erpinterno/erpadmin/erp"
	"github.com/erpinterno/erpadmin/guard"
	"github.com/erpinterno/erpadmin/internal/config"
	"github.com/erpinterno/erpadmin/session"
	"github.com/erpinterno/erpadmin/transport"
	"github.com/erpinterno/erpadmin/ui"
)

type ctxKey int

const configKey ctxKey = 0

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func configFrom(ctx context.Context) config.Config {
	cfg, _ := ctx.Value(configKey).(config.Config)
	if cfg == nil {
		cfg = config.New()
	}
	return cfg
}

// components is the wired client: one session service instance owning the
// credential store, one authorized transport, one API client.
type components struct {
	session *session.Service
	guard   *guard.Guard
	erp     *erp.Client
}

func buildComponents(cfg config.Config) (*components, error) {
	var repoOptions []credstore.FileRepoOption
	if key := cfg.GetSealKey(); key != "" {
		repoOptions = append(repoOptions, credstore.WithSealKey(key))
	}
	repo, err := credstore.NewFileRepo(cfg.GetStateFilePath(), repoOptions...)
	if err != nil {
		return nil, err
	}

	svc, err := session.New(repo, cfg.GetAPIBaseURL())
	if err != nil {
		return nil, err
	}

	authorizer, err := transport.NewAuthorizer(svc,
		transport.WithAllowlist(transport.NewAllowlist(cfg.GetPublicPaths()...)),
	)
	if err != nil {
		return nil, err
	}

	client, err := erp.NewClient(cfg.GetAPIBaseURL(), authorizer.Client())
	if err != nil {
		return nil, err
	}

	g, err := guard.New(svc, guard.WithLandingRoute(cfg.GetLandingRoute()))
	if err != nil {
		return nil, err
	}

	return &components{session: svc, guard: g, erp: client}, nil
}

func runTUI(cfg config.Config) error {
	c, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	app := ui.NewApp(c.session, c.guard, ui.Routes(), c.erp)
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
