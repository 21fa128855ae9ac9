// Package service contains the registry workflows and the resolver
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"indexa/internal/modkit/repokit"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
	ptime "indexa/internal/platform/time"
	"indexa/internal/services/registry/domain"
	"indexa/internal/services/registry/repo"
)

// Service defines the service contract for the registry
type Service interface {
	domain.ServicePort
	domain.ResolverPort
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	pub    domain.Publisher
	log    logger.Logger
}

// New creates a new registry service. pub may be nil when mutation events are not wired
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], pub domain.Publisher) *Svc {
	if db == nil {
		panic("registry.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("registry.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo:   binder.Bind(db),
		binder: binder,
		db:     db,
		pub:    pub,
		log:    *logger.Named("registry"),
	}
}

// Create registers a new domain service
func (s *Svc) Create(ctx context.Context, in domain.CreateInput) (domain.DomainService, error) {
	if len(in.Domains) == 0 {
		return domain.DomainService{}, perr.InvalidArgf("domains must not be empty")
	}
	now := ptime.NowUTC()
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	svc := domain.DomainService{
		ID:                uuid.New().String(),
		Name:              in.Name,
		Domains:           in.Domains,
		BaseURL:           strings.TrimRight(in.BaseURL, "/"),
		IndexesPathPrefix: in.IndexesPathPrefix,
		ExcludedEntities:  in.ExcludedEntities,
		Enabled:           enabled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Repo.Insert(ctx, svc); err != nil {
		return domain.DomainService{}, err
	}
	s.publish(ctx, "created", svc)
	return svc, nil
}

// Get returns one domain service by id
func (s *Svc) Get(ctx context.Context, id string) (domain.DomainService, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns a page of domain services and the total count
func (s *Svc) List(ctx context.Context, q domain.ListQuery) ([]domain.DomainService, int, error) {
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

// Update applies the non nil fields of in to the service
func (s *Svc) Update(ctx context.Context, id string, in domain.UpdateInput) (domain.DomainService, error) {
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return domain.DomainService{}, err
	}
	if in.Name != nil {
		svc.Name = *in.Name
	}
	if in.Domains != nil {
		if len(*in.Domains) == 0 {
			return domain.DomainService{}, perr.InvalidArgf("domains must not be empty")
		}
		svc.Domains = *in.Domains
	}
	if in.BaseURL != nil {
		svc.BaseURL = strings.TrimRight(*in.BaseURL, "/")
	}
	if in.IndexesPathPrefix != nil {
		svc.IndexesPathPrefix = *in.IndexesPathPrefix
	}
	if in.ExcludedEntities != nil {
		svc.ExcludedEntities = *in.ExcludedEntities
	}
	if in.Enabled != nil {
		svc.Enabled = *in.Enabled
	}
	svc.UpdatedAt = ptime.NowUTC()

	if err := s.Repo.Update(ctx, svc); err != nil {
		return domain.DomainService{}, err
	}
	s.publish(ctx, "updated", svc)
	return svc, nil
}

// Delete soft deletes a domain service
func (s *Svc) Delete(ctx context.Context, id string) error {
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "deleted", svc)
	return nil
}

// ListEnabled returns every enabled service in listing order
func (s *Svc) ListEnabled(ctx context.Context) ([]domain.DomainService, error) {
	return s.Repo.ListEnabled(ctx)
}

// ResolveServiceForEvent finds the owning service for a dot separated event type.
//
// Prefixes are tried from length 2 up to the full segment count, so a shorter,
// more general registration wins over a longer one when both match. That order
// is intentional and relied upon by callers
func (s *Svc) ResolveServiceForEvent(ctx context.Context, eventType string) (domain.DomainService, error) {
	segments := strings.Split(eventType, ".")
	if len(segments) < 2 {
		return domain.DomainService{}, perr.NotFoundf("no domain service for event type %q", eventType)
	}
	for n := 2; n <= len(segments); n++ {
		prefix := strings.Join(segments[:n], ".")
		svc, err := s.GetServiceByDomain(ctx, prefix)
		if err == nil {
			return svc, nil
		}
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.DomainService{}, err
		}
	}
	return domain.DomainService{}, perr.NotFoundf("no domain service for event type %q", eventType)
}

// GetServiceByDomain returns the first enabled service matching prefix.
// A trailing ".*" on a registered domain matches the domain itself and
// anything nested under it
func (s *Svc) GetServiceByDomain(ctx context.Context, prefix string) (domain.DomainService, error) {
	services, err := s.Repo.ListEnabled(ctx)
	if err != nil {
		return domain.DomainService{}, err
	}
	for _, svc := range services {
		for _, d := range svc.Domains {
			if domainMatches(d, prefix) {
				return svc, nil
			}
		}
	}
	return domain.DomainService{}, perr.NotFoundf("no domain service for domain %q", prefix)
}

func domainMatches(registered, prefix string) bool {
	if registered == prefix {
		return true
	}
	if base, ok := strings.CutSuffix(registered, ".*"); ok {
		return prefix == base || strings.HasPrefix(prefix, base+".")
	}
	return false
}

func (s *Svc) publish(ctx context.Context, action string, svc domain.DomainService) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishRegistryEvent(ctx, action, svc); err != nil {
		s.log.Warn().Err(err).Str("action", action).Str("service", svc.Name).Msg("registry event publish failed")
	}
}
