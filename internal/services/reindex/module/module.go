// Package module wires reindex jobs into the API using modkit
package module

import (
	"net/http"

	modkit "indexa/internal/modkit"
	"indexa/internal/modkit/httpkit"
	str "indexa/internal/platform/strings"
	dom "indexa/internal/services/reindex/domain"
	reindexhttp "indexa/internal/services/reindex/http"
	reindexrepo "indexa/internal/services/reindex/repo"
	reindexsvc "indexa/internal/services/reindex/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc reindexsvc.Service
}

// New constructs a reindex module. queue may be nil to store without dispatching
func New(
	deps modkit.Deps,
	services reindexsvc.ServiceLister,
	indexer reindexsvc.Batcher,
	queue dom.Enqueuer,
	opts ...modkit.Option,
) *Module {
	b := modkit.Build(append(
		[]modkit.Option{modkit.WithName("reindex"), modkit.WithPrefix("/reindex-jobs")},
		opts...,
	)...)

	svc := reindexsvc.New(deps.PG, reindexrepo.NewPG(), services, indexer, queue)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc, Engine: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		reindexhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Service exposes the concrete service for the worker
func (m *Module) Service() reindexsvc.Service { return m.svc }

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
