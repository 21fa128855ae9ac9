// Package http provides http transport for events
package http

import (
	stdhttp "net/http"

	"indexa/internal/modkit/httpkit"
	"indexa/internal/services/events/domain"
	svc "indexa/internal/services/events/service"
)

// Register mounts event endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.IngestInput](r, "/", h.ingest)
	httpkit.GetJSON[domain.ListQuery](r, "/", h.list)
}

type handlers struct{ svc svc.Service }

// @Summary Ingest an event and queue it for indexing
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body domain.IngestInput true "Event"
// @Success 201 {object} domain.Event "stored"
// @Router /events [post]
func (h *handlers) ingest(r *stdhttp.Request, in domain.IngestInput) (any, error) {
	out, err := h.svc.Ingest(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary List stored events by tags and labels
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body domain.ListQuery false "Filters"
// @Success 200 {array} domain.Event "ok"
// @Router /events [get]
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
