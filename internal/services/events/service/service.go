// Package service contains the events workflows
package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"indexa/internal/modkit/repokit"
	"indexa/internal/platform/logger"
	ptime "indexa/internal/platform/time"
	"indexa/internal/services/events/domain"
	"indexa/internal/services/events/repo"
	registrydom "indexa/internal/services/registry/domain"
)

// Service defines the service contract for events
type Service interface {
	domain.ServicePort
	registrydom.Publisher
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	queue  domain.Enqueuer
	log    logger.Logger
}

// New creates a new events service. queue may be nil to store without dispatching
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], queue domain.Enqueuer) *Svc {
	if db == nil {
		panic("events.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("events.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo:   binder.Bind(db),
		binder: binder,
		db:     db,
		queue:  queue,
		log:    *logger.Named("events"),
	}
}

// Ingest stores an inbound event and enqueues it for indexing
func (s *Svc) Ingest(ctx context.Context, in domain.IngestInput) (domain.Event, error) {
	now := ptime.NowUTC()
	at := now
	if in.Time != nil {
		at = in.Time.UTC()
	}
	ev := domain.Event{
		ID:        uuid.New().String(),
		Source:    in.Source,
		Type:      in.Type,
		Subject:   in.Subject,
		Data:      in.Data,
		Tags:      in.Tags,
		Labels:    in.Labels,
		Privy:     in.Privy,
		UserID:    in.UserID,
		ProjectID: in.ProjectID,
		Time:      at,
		CreatedAt: now,
	}
	if err := s.Repo.Insert(ctx, ev); err != nil {
		return domain.Event{}, err
	}
	if s.queue != nil {
		if err := s.queue.EnqueueIndexEvent(ctx, ev.ID); err != nil {
			s.log.Error().Err(err).Str("event_id", ev.ID).Msg("index enqueue failed")
		}
	}
	return ev, nil
}

// Get returns one event by id
func (s *Svc) Get(ctx context.Context, id string) (domain.Event, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns a filtered page of events and the total count
func (s *Svc) List(ctx context.Context, q domain.ListQuery) ([]domain.Event, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = 50
	}
	return s.Repo.List(ctx, q, size, (page-1)*size)
}

// PublishRegistryEvent records a registry mutation as a stored event.
// Registry events carry no routable subject so they are never enqueued for indexing
func (s *Svc) PublishRegistryEvent(
	ctx context.Context, action string, svc registrydom.DomainService,
) error {
	data, err := toMap(svc)
	if err != nil {
		return err
	}
	now := ptime.NowUTC()
	ev := domain.Event{
		ID:        uuid.New().String(),
		Source:    "/indexa/registry",
		Type:      "indexa.registry.domain_service." + action,
		Subject:   "/domain_service/" + svc.ID,
		Data:      data,
		Tags:      []string{"registry", action},
		Privy:     true,
		Time:      now,
		CreatedAt: now,
	}
	return s.Repo.Insert(ctx, ev)
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
