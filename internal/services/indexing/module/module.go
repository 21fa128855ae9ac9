// Package module wires the indexing orchestrators and exposes their ports
package module

import (
	"indexa/internal/adapters/search"
	"indexa/internal/adapters/upstream"
	"indexa/internal/modkit"
	"indexa/internal/modkit/httpkit"
	registrydom "indexa/internal/services/registry/domain"
	"indexa/internal/services/indexing/service"
)

// Module defines the indexing module
type Module struct {
	deps  modkit.Deps
	ports Ports
	svc   service.Service
}

// New constructs the indexing module.
// The upstream client and provider registry are built by the caller so the
// worker and the API share one wiring path
func New(
	deps modkit.Deps,
	resolver registrydom.ResolverPort,
	client *upstream.Client,
	providers *search.Registry,
) *Module {
	history := service.NewHistory(deps.CH)
	svc := service.New(resolver, client, providers, history)

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{Indexer: svc}
	return m
}

// Service exposes the concrete service for sibling modules
func (m *Module) Service() service.Service { return m.svc }

// Ports returns the module ports (Indexer)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "indexing" }

// Prefix returns the module config prefix (none, indexing has no HTTP surface)
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
