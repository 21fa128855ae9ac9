// Package http provides http transport for the domain service registry
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"indexa/internal/modkit/httpkit"
	"indexa/internal/services/registry/domain"
	svc "indexa/internal/services/registry/service"
)

// Register mounts registry endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.CreateInput](r, "/", h.create)
	httpkit.GetJSON[domain.ListQuery](r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.PutJSON[domain.UpdateInput](r, "/{id}", h.update)
	httpkit.Delete(r, "/{id}", h.remove)
}

type handlers struct{ svc svc.Service }

// @Summary Register a domain service
// @Tags DomainServices
// @Accept json
// @Produce json
// @Param payload body domain.CreateInput true "Domain service"
// @Success 201 {object} domain.DomainService "created"
// @Router /domain-services [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	out, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary List domain services
// @Tags DomainServices
// @Accept json
// @Produce json
// @Param payload body domain.ListQuery false "Paging"
// @Success 200 {array} domain.DomainService "ok"
// @Router /domain-services [get]
func (h *handlers) list(r *stdhttp.Request, in domain.ListQuery) (any, error) {
	items, total, err := h.svc.List(r.Context(), in)
	if err != nil {
		return nil, err
	}
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = 50
	}
	return httpkit.List(items, total, page, size), nil
}

// @Summary Get a domain service
// @Tags DomainServices
// @Produce json
// @Param id path string true "Domain service id"
// @Success 200 {object} domain.DomainService "ok"
// @Router /domain-services/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}

// @Summary Update a domain service
// @Tags DomainServices
// @Accept json
// @Produce json
// @Param id path string true "Domain service id"
// @Param payload body domain.UpdateInput true "Fields to change"
// @Success 200 {object} domain.DomainService "ok"
// @Router /domain-services/{id} [put]
func (h *handlers) update(r *stdhttp.Request, in domain.UpdateInput) (any, error) {
	return h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
}

// @Summary Soft delete a domain service
// @Tags DomainServices
// @Param id path string true "Domain service id"
// @Success 204 "deleted"
// @Router /domain-services/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
