// Package module wires events into the API using modkit
package module

import (
	"net/http"

	modkit "indexa/internal/modkit"
	"indexa/internal/modkit/httpkit"
	str "indexa/internal/platform/strings"
	dom "indexa/internal/services/events/domain"
	eventshttp "indexa/internal/services/events/http"
	eventsrepo "indexa/internal/services/events/repo"
	eventssvc "indexa/internal/services/events/service"
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

	svc eventssvc.Service
}

// New constructs an events module. queue may be nil to store without dispatching
func New(deps modkit.Deps, queue dom.Enqueuer, opts ...modkit.Option) *Module {
	b := modkit.Build(append(
		[]modkit.Option{modkit.WithName("events"), modkit.WithPrefix("/events")},
		opts...,
	)...)

	svc := eventssvc.New(deps.PG, eventsrepo.NewPG(), queue)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc, Publisher: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		eventshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Service exposes the concrete service for sibling modules
func (m *Module) Service() eventssvc.Service { return m.svc }

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
