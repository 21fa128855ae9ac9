// Package http provides provider status endpoints
package http

import (
	"net/http"

	"indexa/internal/adapters/search"
	"indexa/internal/modkit/httpkit"
)

// knownNames lists every backend this build can construct, in display order
var knownNames = []string{"algolia", "typesense", "bleve"}

// Deps are the handler dependencies
type Deps struct {
	Registry *search.Registry
}

type handlers struct {
	deps Deps
}

// Register mounts the provider routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/", h.list)
}

// ProviderStatus reports one backend's configuration and liveness
// swagger:model
type ProviderStatus struct {
	Name    string `json:"name"    example:"algolia"`
	Enabled bool   `json:"enabled" example:"true"`
	Healthy bool   `json:"healthy" example:"true"`
}

// @Summary List search providers and their status
// @Description Health is only probed for enabled providers
// @Tags Providers
// @Produce json
// @Success 200 {array} ProviderStatus
// @Router /providers [get]
func (h *handlers) list(r *http.Request) (any, error) {
	ctx := r.Context()

	byName := map[string]search.Provider{}
	for _, p := range h.deps.Registry.Enabled(ctx) {
		byName[p.Name()] = p
	}

	items := make([]ProviderStatus, 0, len(knownNames))
	for _, name := range knownNames {
		st := ProviderStatus{Name: name}
		if p, ok := byName[name]; ok {
			st.Enabled = true
			st.Healthy = p.Healthcheck(ctx)
		}
		items = append(items, st)
	}
	return httpkit.List(items, len(items), 1, len(items)), nil
}
