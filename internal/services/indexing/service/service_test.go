package service

import (
	"context"
	"testing"

	"indexa/internal/adapters/search"
	"indexa/internal/adapters/upstream"
	"indexa/internal/core/docbuild"
	perr "indexa/internal/platform/errors"
	eventsdom "indexa/internal/services/events/domain"
	"indexa/internal/services/indexing/domain"
	registrydom "indexa/internal/services/registry/domain"
)

type fakeResolver struct {
	svc registrydom.DomainService
	err error
}

func (f *fakeResolver) ResolveServiceForEvent(context.Context, string) (registrydom.DomainService, error) {
	return f.svc, f.err
}

func (f *fakeResolver) GetServiceByDomain(context.Context, string) (registrydom.DomainService, error) {
	return f.svc, f.err
}

func (f *fakeResolver) ListEnabled(context.Context) ([]registrydom.DomainService, error) {
	return []registrydom.DomainService{f.svc}, nil
}

type fakeFetcher struct {
	entity    map[string]any
	batch     map[string]any
	err       error
	getCalls  int
	listCalls int
}

func (f *fakeFetcher) GetEntity(
	_ context.Context, _, _, _, _ string,
) (map[string]any, error) {
	f.getCalls++
	return f.entity, f.err
}

func (f *fakeFetcher) GetEntitiesBatch(
	_ context.Context, _, _, _ string, _ upstream.BatchQuery,
) (map[string]any, error) {
	f.listCalls++
	return f.batch, f.err
}

type fakeProvider struct {
	name        string
	upserts     []docbuild.Document
	batches     [][]docbuild.Document
	upsertErr   error
	batchErr    error
	healthyFlag bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Upsert(_ context.Context, doc docbuild.Document) error {
	p.upserts = append(p.upserts, doc)
	return p.upsertErr
}

func (p *fakeProvider) UpsertBatch(_ context.Context, docs []docbuild.Document) error {
	p.batches = append(p.batches, docs)
	return p.batchErr
}

func (p *fakeProvider) Delete(context.Context, string, string) error        { return nil }
func (p *fakeProvider) DeleteBatch(context.Context, string, []string) error { return nil }
func (p *fakeProvider) EnsureIndex(context.Context, string) error           { return nil }
func (p *fakeProvider) Healthcheck(context.Context) bool                    { return p.healthyFlag }

type staticProviders []search.Provider

func (s staticProviders) Enabled(context.Context) []search.Provider { return s }

func petstore() registrydom.DomainService {
	return registrydom.DomainService{
		ID:      "svc-1",
		Name:    "petstore",
		Domains: []string{"com.petstore"},
		BaseURL: "https://petstore.internal",
		Enabled: true,
	}
}

func petEvent() eventsdom.Event {
	return eventsdom.Event{
		ID:      "ev-1",
		Source:  "/petstore",
		Type:    "com.petstore.pets.created",
		Subject: "/pets/42",
	}
}

func TestIndexEventHappyPath(t *testing.T) {
	resolver := &fakeResolver{svc: petstore()}
	fetch := &fakeFetcher{entity: map[string]any{"name": "Rex"}}
	p1 := &fakeProvider{name: "a"}
	p2 := &fakeProvider{name: "b"}
	s := New(resolver, fetch, staticProviders{p1, p2}, nil)

	if err := s.IndexEvent(context.Background(), petEvent()); err != nil {
		t.Fatalf("IndexEvent: %v", err)
	}
	if len(p1.upserts) != 1 || len(p2.upserts) != 1 {
		t.Fatalf("expected each provider upserted once, got %d and %d", len(p1.upserts), len(p2.upserts))
	}
	doc := p1.upserts[0]
	if doc["id"] != "42" || doc["type"] != "pets" || doc["source"] != "/petstore" || doc["name"] != "Rex" {
		t.Fatalf("unexpected document %v", doc)
	}
}

func TestIndexEventRoutingMissIsDropped(t *testing.T) {
	resolver := &fakeResolver{err: perr.NotFoundf("nope")}
	fetch := &fakeFetcher{}
	s := New(resolver, fetch, staticProviders{}, nil)

	if err := s.IndexEvent(context.Background(), petEvent()); err != nil {
		t.Fatalf("routing miss must not error, got %v", err)
	}
	if fetch.getCalls != 0 {
		t.Fatal("routing miss must not fetch")
	}
}

func TestIndexEventUnparseableSubjectIsDropped(t *testing.T) {
	resolver := &fakeResolver{svc: petstore()}
	fetch := &fakeFetcher{}
	s := New(resolver, fetch, staticProviders{&fakeProvider{name: "a"}}, nil)

	ev := petEvent()
	ev.Subject = "/pets"
	if err := s.IndexEvent(context.Background(), ev); err != nil {
		t.Fatalf("unparseable subject must not error, got %v", err)
	}
	if fetch.getCalls != 0 {
		t.Fatal("unparseable subject must not fetch")
	}
}

func TestIndexEventExcludedEntitySkipped(t *testing.T) {
	svc := petstore()
	svc.ExcludedEntities = []string{"pets"}
	resolver := &fakeResolver{svc: svc}
	fetch := &fakeFetcher{}
	s := New(resolver, fetch, staticProviders{&fakeProvider{name: "a"}}, nil)

	if err := s.IndexEvent(context.Background(), petEvent()); err != nil {
		t.Fatalf("excluded entity must not error, got %v", err)
	}
	if fetch.getCalls != 0 {
		t.Fatal("excluded entity must not fetch")
	}
}

func TestIndexEventNoProvidersFails(t *testing.T) {
	resolver := &fakeResolver{svc: petstore()}
	fetch := &fakeFetcher{entity: map[string]any{}}
	s := New(resolver, fetch, staticProviders{}, nil)

	err := s.IndexEvent(context.Background(), petEvent())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestIndexEventProviderFailureDoesNotBlockOthers(t *testing.T) {
	resolver := &fakeResolver{svc: petstore()}
	fetch := &fakeFetcher{entity: map[string]any{}}
	broken := &fakeProvider{name: "broken", upsertErr: perr.Providerf("down")}
	healthy := &fakeProvider{name: "healthy"}
	s := New(resolver, fetch, staticProviders{broken, healthy}, nil)

	if err := s.IndexEvent(context.Background(), petEvent()); err != nil {
		t.Fatalf("per provider failure must not surface, got %v", err)
	}
	if len(healthy.upserts) != 1 {
		t.Fatal("healthy provider should still be called")
	}
}

func batchOf(entities ...map[string]any) map[string]any {
	list := make([]any, 0, len(entities))
	for _, e := range entities {
		list = append(list, e)
	}
	return map[string]any{"data": list}
}

func TestBatchIndexHappyPath(t *testing.T) {
	resolver := &fakeResolver{svc: petstore()}
	fetch := &fakeFetcher{batch: batchOf(
		map[string]any{"id": "1", "source": "/petstore"},
		map[string]any{"id": "2", "source": "/petstore"},
	)}
	p := &fakeProvider{name: "a"}
	s := New(resolver, fetch, staticProviders{p}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("BatchIndex: %v", err)
	}
	if res.Indexed != 2 || res.Failed != 0 || res.TotalInPage != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(p.batches) != 1 || len(p.batches[0]) != 2 {
		t.Fatalf("expected one bulk call with 2 docs, got %+v", p.batches)
	}
	if len(res.EntityIDs) != 2 || res.EntityIDs[0] != "1" {
		t.Fatalf("unexpected entity ids %v", res.EntityIDs)
	}
}

func TestBatchIndexItemsKeyFallback(t *testing.T) {
	fetch := &fakeFetcher{batch: map[string]any{
		"items": []any{map[string]any{"id": "1", "source": "/petstore"}},
	}}
	p := &fakeProvider{name: "a"}
	s := New(&fakeResolver{}, fetch, staticProviders{p}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("BatchIndex: %v", err)
	}
	if res.Indexed != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBatchIndexEmptyPageIsZero(t *testing.T) {
	fetch := &fakeFetcher{batch: map[string]any{"data": []any{}}}
	p := &fakeProvider{name: "a"}
	s := New(&fakeResolver{}, fetch, staticProviders{p}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("BatchIndex: %v", err)
	}
	if res.Indexed != 0 || res.Failed != 0 || res.TotalInPage != 0 {
		t.Fatalf("expected zero counts, got %+v", res)
	}
	if len(p.batches) != 0 {
		t.Fatal("empty page must not call providers")
	}
}

func TestBatchIndexNoProvidersIsNoop(t *testing.T) {
	fetch := &fakeFetcher{batch: batchOf(map[string]any{"id": "1", "source": "/petstore"})}
	s := New(&fakeResolver{}, fetch, staticProviders{}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("no providers must not error in batch mode, got %v", err)
	}
	if res.Indexed != 0 || res.Failed != 0 || res.TotalInPage != 0 {
		t.Fatalf("expected zero counts, got %+v", res)
	}
}

func TestBatchIndexMissingIDCountsFailed(t *testing.T) {
	fetch := &fakeFetcher{batch: batchOf(
		map[string]any{"source": "/petstore"},
		map[string]any{"id": "2", "source": "/petstore"},
	)}
	p := &fakeProvider{name: "a"}
	s := New(&fakeResolver{}, fetch, staticProviders{p}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("BatchIndex: %v", err)
	}
	if res.Indexed != 1 || res.Failed != 1 || res.TotalInPage != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBatchIndexMissingSourceCountsFailed(t *testing.T) {
	fetch := &fakeFetcher{batch: batchOf(map[string]any{"id": "1"})}
	p := &fakeProvider{name: "a"}
	s := New(&fakeResolver{}, fetch, staticProviders{p}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("BatchIndex: %v", err)
	}
	if res.Indexed != 0 || res.Failed != 1 || res.TotalInPage != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(p.batches) != 0 {
		t.Fatal("no built docs means no provider calls")
	}
}

func TestBatchIndexNumericIDs(t *testing.T) {
	fetch := &fakeFetcher{batch: batchOf(map[string]any{"id": float64(42), "source": "/petstore"})}
	p := &fakeProvider{name: "a"}
	s := New(&fakeResolver{}, fetch, staticProviders{p}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("BatchIndex: %v", err)
	}
	if len(res.EntityIDs) != 1 || res.EntityIDs[0] != "42" {
		t.Fatalf("unexpected entity ids %v", res.EntityIDs)
	}
}

func TestBatchIndexProviderFailureCountsWholeSet(t *testing.T) {
	fetch := &fakeFetcher{batch: batchOf(
		map[string]any{"id": "1", "source": "/petstore"},
		map[string]any{"id": "2", "source": "/petstore"},
	)}
	broken := &fakeProvider{name: "broken", batchErr: perr.Providerf("down")}
	healthy := &fakeProvider{name: "healthy"}
	s := New(&fakeResolver{}, fetch, staticProviders{broken, healthy}, nil)

	res, err := s.BatchIndex(context.Background(), petstore(), "pets", domain.BatchArgs{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("BatchIndex: %v", err)
	}
	if res.Indexed != 2 || res.Failed != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(healthy.batches) != 1 {
		t.Fatal("healthy provider should still be called")
	}
}
