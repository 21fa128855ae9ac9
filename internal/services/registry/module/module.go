// Package module wires the registry into the API using modkit
package module

import (
	"net/http"

	modkit "indexa/internal/modkit"
	"indexa/internal/modkit/httpkit"
	str "indexa/internal/platform/strings"
	dom "indexa/internal/services/registry/domain"
	registryhttp "indexa/internal/services/registry/http"
	registryrepo "indexa/internal/services/registry/repo"
	registrysvc "indexa/internal/services/registry/service"
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

	svc registrysvc.Service
}

// New constructs a registry module with the provided dependencies and options.
// pub may be nil when mutation events are not wired
func New(deps modkit.Deps, pub dom.Publisher, opts ...modkit.Option) *Module {
	b := modkit.Build(append(
		[]modkit.Option{modkit.WithName("registry"), modkit.WithPrefix("/domain-services")},
		opts...,
	)...)

	svc := registrysvc.New(deps.PG, registryrepo.NewPG(), pub)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc, Resolver: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		registryhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Service exposes the concrete service for sibling modules
func (m *Module) Service() registrysvc.Service { return m.svc }

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
