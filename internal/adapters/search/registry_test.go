package search

import (
	"context"
	"testing"

	"indexa/internal/core/docbuild"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string                                         { return s.name }
func (s *stubProvider) Upsert(context.Context, docbuild.Document) error      { return nil }
func (s *stubProvider) UpsertBatch(context.Context, []docbuild.Document) error { return nil }
func (s *stubProvider) Delete(context.Context, string, string) error         { return nil }
func (s *stubProvider) DeleteBatch(context.Context, string, []string) error  { return nil }
func (s *stubProvider) EnsureIndex(context.Context, string) error            { return nil }
func (s *stubProvider) Healthcheck(context.Context) bool                     { return true }

type mapSettings map[string]bool

func (m mapSettings) Bool(_ context.Context, key string, def bool) bool {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func providerNames(ps []Provider) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}

func TestEnabledDefaultsToTrue(t *testing.T) {
	r := NewRegistryWith(mapSettings{}, &stubProvider{name: "algolia"}, &stubProvider{name: "typesense"})
	got := providerNames(r.Enabled(context.Background()))
	if len(got) != 2 {
		t.Fatalf("expected both providers enabled, got %v", got)
	}
}

func TestEnabledHonorsToggle(t *testing.T) {
	settings := mapSettings{"provider.typesense.enabled": false}
	r := NewRegistryWith(settings, &stubProvider{name: "algolia"}, &stubProvider{name: "typesense"})
	got := providerNames(r.Enabled(context.Background()))
	if len(got) != 1 || got[0] != "algolia" {
		t.Fatalf("expected only algolia, got %v", got)
	}
}

func TestEnabledNilSettings(t *testing.T) {
	r := NewRegistryWith(nil, &stubProvider{name: "bleve"})
	if got := r.Enabled(context.Background()); len(got) != 1 {
		t.Fatalf("nil settings should enable everything, got %v", providerNames(got))
	}
}

func TestNewRegistryRequiresCredentials(t *testing.T) {
	r := NewRegistry(Config{AlgoliaAppID: "app"}, nil)
	if len(r.Known()) != 0 {
		t.Fatalf("incomplete credentials should build nothing, got %v", providerNames(r.Known()))
	}

	r = NewRegistry(Config{
		AlgoliaAppID:    "app",
		AlgoliaAPIKey:   "key",
		TypesenseURL:    "http://localhost:8108",
		TypesenseAPIKey: "ts",
	}, nil)
	got := providerNames(r.Known())
	if len(got) != 2 {
		t.Fatalf("expected algolia and typesense, got %v", got)
	}
}

func TestNewRegistryBuildsBleve(t *testing.T) {
	r := NewRegistry(Config{BlevePath: t.TempDir()}, nil)
	got := providerNames(r.Known())
	if len(got) != 1 || got[0] != "bleve" {
		t.Fatalf("expected bleve, got %v", got)
	}
}

func TestKnownIsACopy(t *testing.T) {
	r := NewRegistryWith(nil, &stubProvider{name: "algolia"})
	known := r.Known()
	known[0] = &stubProvider{name: "mutated"}
	if r.Known()[0].Name() != "algolia" {
		t.Fatal("Known must not expose internal state")
	}
}
