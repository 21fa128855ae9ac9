package service

import (
	"context"
	"testing"

	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
	"indexa/internal/services/registry/domain"
	"indexa/internal/services/registry/repo"
)

type fakeRepo struct {
	repo.Repo
	enabled []domain.DomainService
}

func (f *fakeRepo) ListEnabled(context.Context) ([]domain.DomainService, error) {
	return f.enabled, nil
}

func newResolver(services ...domain.DomainService) *Svc {
	return &Svc{Repo: &fakeRepo{enabled: services}, log: *logger.Named("registry")}
}

func svcWith(name string, domains ...string) domain.DomainService {
	return domain.DomainService{ID: name, Name: name, Domains: domains, Enabled: true}
}

func TestResolveRequiresTwoSegments(t *testing.T) {
	s := newResolver(svcWith("petstore", "com.petstore"))
	_, err := s.ResolveServiceForEvent(context.Background(), "petstore")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found for single segment, got %v", err)
	}
}

func TestResolveExactPrefix(t *testing.T) {
	s := newResolver(svcWith("petstore", "com.petstore"))
	got, err := s.ResolveServiceForEvent(context.Background(), "com.petstore.pets.created")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "petstore" {
		t.Fatalf("resolved %q, want petstore", got.Name)
	}
}

func TestResolveShortestPrefixWins(t *testing.T) {
	// both services could match com.petstore.pets.created at different lengths,
	// the shorter registration must win
	s := newResolver(
		svcWith("specific", "com.petstore.pets"),
		svcWith("general", "com.petstore"),
	)
	got, err := s.ResolveServiceForEvent(context.Background(), "com.petstore.pets.created")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "general" {
		t.Fatalf("resolved %q, want general (shortest prefix wins)", got.Name)
	}
}

func TestResolveListingOrderBreaksTies(t *testing.T) {
	s := newResolver(
		svcWith("first", "com.petstore"),
		svcWith("second", "com.petstore"),
	)
	got, err := s.ResolveServiceForEvent(context.Background(), "com.petstore.pets.created")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "first" {
		t.Fatalf("resolved %q, want first", got.Name)
	}
}

func TestResolveNoMatch(t *testing.T) {
	s := newResolver(svcWith("petstore", "com.petstore"))
	_, err := s.ResolveServiceForEvent(context.Background(), "org.example.things.created")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWildcardDomainMatching(t *testing.T) {
	s := newResolver(svcWith("petstore", "com.petstore.*"))
	ctx := context.Background()

	cases := []struct {
		prefix string
		match  bool
	}{
		{"com.petstore", true},
		{"com.petstore.pets", true},
		{"com.petstore.pets.tags", true},
		{"com.petstorex", false},
		{"com.pet", false},
	}
	for _, tc := range cases {
		_, err := s.GetServiceByDomain(ctx, tc.prefix)
		if tc.match && err != nil {
			t.Fatalf("prefix %q should match: %v", tc.prefix, err)
		}
		if !tc.match && !perr.IsCode(err, perr.ErrorCodeNotFound) {
			t.Fatalf("prefix %q should not match, got %v", tc.prefix, err)
		}
	}
}

func TestResolveViaWildcard(t *testing.T) {
	s := newResolver(svcWith("petstore", "com.petstore.*"))
	got, err := s.ResolveServiceForEvent(context.Background(), "com.petstore.pets.created")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "petstore" {
		t.Fatalf("resolved %q, want petstore", got.Name)
	}
}

func TestExcludes(t *testing.T) {
	svc := domain.DomainService{ExcludedEntities: []string{"audit", "internal"}}
	if !svc.Excludes("audit") {
		t.Fatal("audit should be excluded")
	}
	if svc.Excludes("pets") {
		t.Fatal("pets should not be excluded")
	}
}
