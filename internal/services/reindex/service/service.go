// Package service contains the reindex job workflows and execution engine
package service

import (
	"context"

	"github.com/google/uuid"

	"indexa/internal/modkit/repokit"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
	ptime "indexa/internal/platform/time"
	indexingdom "indexa/internal/services/indexing/domain"
	registrydom "indexa/internal/services/registry/domain"
	"indexa/internal/services/reindex/domain"
	"indexa/internal/services/reindex/repo"
)

// ServiceLister yields the enabled domain services to reindex
type ServiceLister interface {
	ListEnabled(ctx context.Context) ([]registrydom.DomainService, error)
}

// Batcher is the page-at-a-time indexing surface the engine drives
type Batcher interface {
	BatchIndex(
		ctx context.Context,
		svc registrydom.DomainService,
		entityType string,
		args indexingdom.BatchArgs,
	) (indexingdom.BatchResult, error)
}

// Service defines the service contract for reindex jobs
type Service interface {
	domain.ServicePort
	domain.EnginePort
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	queue    domain.Enqueuer
	services ServiceLister
	indexer  Batcher
	log      logger.Logger
}

// New creates the reindex service. queue may be nil to store without dispatching
func New(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Repo],
	services ServiceLister,
	indexer Batcher,
	queue domain.Enqueuer,
) *Svc {
	if db == nil {
		panic("reindex.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("reindex.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo:     binder.Bind(db),
		binder:   binder,
		db:       db,
		queue:    queue,
		services: services,
		indexer:  indexer,
		log:      *logger.Named("reindex"),
	}
}

// Create stores a pending job and enqueues its execution
func (s *Svc) Create(ctx context.Context, in domain.CreateInput) (domain.ReindexJob, error) {
	mode := in.Mode
	if mode == "" {
		mode = domain.ModeUpsert
	}
	now := ptime.NowUTC()
	job := domain.ReindexJob{
		ID:            uuid.New().String(),
		Domains:       in.Domains,
		EntityTypes:   in.EntityTypes,
		Providers:     in.Providers,
		Mode:          mode,
		UpdatedAfter:  in.UpdatedAfter,
		UpdatedBefore: in.UpdatedBefore,
		Status:        domain.StatusPending,
		Progress:      0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Insert(ctx, job); err != nil {
		return domain.ReindexJob{}, err
	}
	if s.queue != nil {
		// job stays pending and can still be started via the run endpoint
		if err := s.queue.EnqueueReindex(ctx, job.ID); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("reindex enqueue failed")
		}
	}
	return job, nil
}

// Get returns one reindex job by id
func (s *Svc) Get(ctx context.Context, id string) (domain.ReindexJob, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns a page of reindex jobs and the total count
func (s *Svc) List(ctx context.Context, q domain.ListQuery) ([]domain.ReindexJob, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = 50
	}
	return s.Repo.List(ctx, size, (page-1)*size)
}

// Cancel transitions a pending or running job to cancelled
func (s *Svc) Cancel(ctx context.Context, id string) error {
	job, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !job.Status.Cancellable() {
		return perr.InvalidArgf("cannot cancel job with status %s", job.Status)
	}
	return s.Repo.UpdateStatus(ctx, id, domain.StatusCancelled, "")
}

// Run executes a job synchronously
func (s *Svc) Run(ctx context.Context, id string) error {
	return s.Execute(ctx, id)
}
