// Package http provides http transport for reindex jobs
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"indexa/internal/modkit/httpkit"
	"indexa/internal/services/reindex/domain"
	svc "indexa/internal/services/reindex/service"
)

// Register mounts reindex job endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.CreateInput](r, "/", h.create)
	httpkit.GetJSON[domain.ListQuery](r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.Post(r, "/{id}/cancel", h.cancel)
	httpkit.Post(r, "/{id}/run", h.run)
}

type handlers struct{ svc svc.Service }

// @Summary Create and enqueue a reindex job
// @Tags ReindexJobs
// @Accept json
// @Produce json
// @Param payload body domain.CreateInput true "Job"
// @Success 201 {object} domain.ReindexJob "created"
// @Router /reindex-jobs [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	out, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary List reindex jobs
// @Tags ReindexJobs
// @Accept json
// @Produce json
// @Param payload body domain.ListQuery false "Paging"
// @Success 200 {array} domain.ReindexJob "ok"
// @Router /reindex-jobs [get]
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

// @Summary Get reindex job status
// @Tags ReindexJobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} domain.StatusView "ok"
// @Router /reindex-jobs/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	job, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return domain.StatusView{
		ID:           job.ID,
		Status:       job.Status,
		Progress:     job.Progress,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		ErrorMessage: job.ErrorMessage,
	}, nil
}

// @Summary Cancel a pending or running reindex job
// @Tags ReindexJobs
// @Param id path string true "Job id"
// @Success 204 "cancelled"
// @Router /reindex-jobs/{id}/cancel [post]
func (h *handlers) cancel(r *stdhttp.Request) (any, error) {
	if err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Run a reindex job synchronously
// @Tags ReindexJobs
// @Param id path string true "Job id"
// @Success 204 "done"
// @Router /reindex-jobs/{id}/run [post]
func (h *handlers) run(r *stdhttp.Request) (any, error) {
	if err := h.svc.Run(r.Context(), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
