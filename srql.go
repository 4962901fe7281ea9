// Package srql is a terminal explorer for a monitoring system's queryable
// entities, driven by the compact text query language and its structured
// builder. The heavy lifting lives in the subpackages; this package only
// hosts a page session in a bubbletea program.
package srql

import (
	"context"

	"srql/adapter"
	nt "srql/entity"
	"srql/page"
)

// Config gathers what the TUI needs to run.
type Config struct {
	Entity string
	Limit  int
}

// Actor for local exploration; single-user, single-tenant.
func LocalActor(tenant string) *adapter.Actor {
	return &adapter.Actor{ID: "local", Tenant: tenant}
}

// New builds the bubbletea model around a page orchestrator.
func (cfg Config) New(ctx context.Context, pg *page.Page, actor *adapter.Actor, lgr nt.Logger) Model {

	return Model{
		page:   pg,
		sess:   pg.Init(cfg.Entity, cfg.Limit),
		actor:  actor,
		ctx:    ctx,
		logger: lgr,
	}
}
