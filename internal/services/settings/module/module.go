// Package module wires the settings service and exposes its ports
package module

import (
	"indexa/internal/modkit"
	"indexa/internal/modkit/httpkit"
	"indexa/internal/services/settings/repo"
	"indexa/internal/services/settings/service"
)

// Module defines the settings module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the settings module with its ports
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps}
	m.ports = Ports{Reader: svc, Writer: svc}
	return m
}

// Ports returns the module ports (Reader, Writer)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "settings" }

// Prefix returns the module config prefix (none, settings has no HTTP surface)
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
