// Package service implements the single event and batch indexing orchestrators
package service

import (
	"context"
	"encoding/json"
	"strconv"

	"indexa/internal/adapters/search"
	"indexa/internal/adapters/search/indexname"
	"indexa/internal/adapters/upstream"
	"indexa/internal/core/docbuild"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
	eventsdom "indexa/internal/services/events/domain"
	"indexa/internal/services/indexing/domain"
	registrydom "indexa/internal/services/registry/domain"
)

// Fetcher is the upstream read surface the orchestrators need
type Fetcher interface {
	GetEntity(ctx context.Context, baseURL, pathPrefix, entityType, entityID string) (map[string]any, error)
	GetEntitiesBatch(
		ctx context.Context, baseURL, pathPrefix, entityType string, q upstream.BatchQuery,
	) (map[string]any, error)
}

// ProviderSource yields the providers enabled at call time
type ProviderSource interface {
	Enabled(ctx context.Context) []search.Provider
}

// Service defines the contract for the indexing orchestrators
type Service interface {
	domain.IndexerPort
}

// Svc implements the Service interface
type Svc struct {
	resolver  registrydom.ResolverPort
	fetch     Fetcher
	providers ProviderSource
	history   *History
	log       logger.Logger
}

// New creates the indexing service. history may be nil
func New(resolver registrydom.ResolverPort, fetch Fetcher, providers ProviderSource, history *History) *Svc {
	if resolver == nil {
		panic("indexing.Service requires a non nil resolver")
	}
	if fetch == nil {
		panic("indexing.Service requires a non nil fetcher")
	}
	if providers == nil {
		panic("indexing.Service requires a non nil provider source")
	}
	return &Svc{
		resolver:  resolver,
		fetch:     fetch,
		providers: providers,
		history:   history,
		log:       *logger.Named("indexing"),
	}
}

// IndexEvent indexes the entity an event points at.
// Routing misses and unparseable subjects are logged and dropped so the
// dispatcher never retries them
func (s *Svc) IndexEvent(ctx context.Context, ev eventsdom.Event) error {
	svc, err := s.resolver.ResolveServiceForEvent(ctx, ev.Type)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.log.Warn().Str("event_type", ev.Type).Msg("no domain service for event type")
			return nil
		}
		return err
	}

	entityType := docbuild.ExtractEntityType(ev.Subject)
	entityID := docbuild.ExtractEntityID(ev.Subject)
	if entityType == "" || entityID == "" {
		s.log.Warn().Str("subject", ev.Subject).Msg("could not extract entity type or id from subject")
		return nil
	}

	if svc.Excludes(entityType) {
		s.log.Debug().
			Str("entity_type", entityType).
			Str("service", svc.Name).
			Msg("entity type excluded for service")
		return nil
	}

	upstreamDoc, err := s.fetch.GetEntity(ctx, svc.BaseURL, svc.IndexesPathPrefix, entityType, entityID)
	if err != nil {
		return err
	}
	doc := docbuild.Build(ev.Source, entityType, entityID, upstreamDoc)

	providers := s.providers.Enabled(ctx)
	if len(providers) == 0 {
		return perr.Unavailablef("no search providers enabled")
	}

	s.log.Info().Str("entity_type", entityType).Str("entity_id", entityID).Msg("indexing entity")
	index := indexname.For(doc)
	for _, p := range providers {
		if err := p.Upsert(ctx, doc); err != nil {
			s.log.Error().Err(err).
				Str("provider", p.Name()).
				Str("entity_id", entityID).
				Msg("provider upsert failed")
			s.history.Record(ctx, p.Name(), index, entityID, "upsert", err)
			continue
		}
		s.history.Record(ctx, p.Name(), index, entityID, "upsert", nil)
	}
	return nil
}

// BatchIndex indexes one page of entities for (service, entityType).
// Unlike IndexEvent, an empty provider set is a no-op because batch runs
// unattended
func (s *Svc) BatchIndex(
	ctx context.Context,
	svc registrydom.DomainService,
	entityType string,
	args domain.BatchArgs,
) (domain.BatchResult, error) {
	resp, err := s.fetch.GetEntitiesBatch(ctx, svc.BaseURL, svc.IndexesPathPrefix, entityType, upstream.BatchQuery{
		Page:          args.Page,
		PerPage:       args.PerPage,
		UpdatedAfter:  args.UpdatedAfter,
		UpdatedBefore: args.UpdatedBefore,
	})
	if err != nil {
		return domain.BatchResult{}, err
	}

	entities := extractEntities(resp)
	if len(entities) == 0 {
		s.log.Warn().Str("entity_type", entityType).Msg("no entities returned from batch fetch")
		return domain.BatchResult{}, nil
	}

	providers := s.providers.Enabled(ctx)
	if len(providers) == 0 {
		s.log.Warn().Msg("no search providers enabled")
		return domain.BatchResult{}, nil
	}

	var (
		docs   []docbuild.Document
		failed int
	)
	for _, entity := range entities {
		id := entityID(entity)
		if id == "" {
			s.log.Warn().Str("entity_type", entityType).Msg("entity missing id, skipping")
			failed++
			continue
		}
		source, ok := entity["source"].(string)
		if !ok || source == "" {
			s.log.Error().
				Str("entity_type", entityType).
				Str("entity_id", id).
				Msg("entity missing source, skipping")
			failed++
			continue
		}
		docs = append(docs, docbuild.Build(source, entityType, id, entity))
	}
	if len(docs) == 0 {
		return domain.BatchResult{Failed: failed, TotalInPage: len(entities)}, nil
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		ids = append(ids, id)
	}

	indexed := 0
	for _, p := range providers {
		if err := p.UpsertBatch(ctx, docs); err != nil {
			s.log.Error().Err(err).
				Str("provider", p.Name()).
				Int("docs", len(docs)).
				Msg("provider batch upsert failed")
			failed += len(docs)
			s.history.RecordBatch(ctx, p.Name(), docs, err)
			continue
		}
		indexed += len(docs)
		s.history.RecordBatch(ctx, p.Name(), docs, nil)
	}

	return domain.BatchResult{
		Indexed:     indexed,
		Failed:      failed,
		EntityIDs:   ids,
		TotalInPage: len(entities),
	}, nil
}

// extractEntities pulls the entity list from a batch response, preferring
// the "data" key over "items"
func extractEntities(resp map[string]any) []map[string]any {
	raw, ok := resp["data"]
	if !ok {
		raw, ok = resp["items"]
	}
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		} else {
			// keep the slot so the caller still counts it against the page
			out = append(out, map[string]any{})
		}
	}
	return out
}

// entityID renders the id field of an upstream entity as a string
func entityID(entity map[string]any) string {
	switch v := entity["id"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
