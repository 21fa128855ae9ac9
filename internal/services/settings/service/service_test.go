package service

import (
	"context"
	"testing"
	"time"

	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
	"indexa/internal/platform/testkit"
	"indexa/internal/services/settings/domain"
	"indexa/internal/services/settings/repo"
)

type fakeRepo struct {
	values map[string]string
	getErr error
	sets   map[string]string
}

func (f *fakeRepo) Get(_ context.Context, key string) (domain.Setting, error) {
	if f.getErr != nil {
		return domain.Setting{}, f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return domain.Setting{}, perr.NotFoundf("setting %q not found", key)
	}
	return domain.Setting{Key: key, Value: v, UpdatedAt: time.Now()}, nil
}

func (f *fakeRepo) Upsert(_ context.Context, key, value string) error {
	if f.sets == nil {
		f.sets = map[string]string{}
	}
	f.sets[key] = value
	return nil
}

func (f *fakeRepo) Delete(context.Context, string) error { return nil }

func (f *fakeRepo) List(context.Context) ([]domain.Setting, error) { return nil, nil }

func newSvc(repo *fakeRepo) *Svc {
	return &Svc{Repo: repo, log: *logger.Named("settings")}
}

func TestNew_RequiresDB(t *testing.T) {
	testkit.MustPanic(t, func() { New(nil, repo.NewPG()) })
}

func TestBool_ParsesStoredValue(t *testing.T) {
	s := newSvc(&fakeRepo{values: map[string]string{
		"provider.algolia.enabled":   "false",
		"provider.typesense.enabled": "true",
	}})
	ctx := context.Background()

	if s.Bool(ctx, "provider.algolia.enabled", true) {
		t.Fatal("stored false should win over default true")
	}
	if !s.Bool(ctx, "provider.typesense.enabled", false) {
		t.Fatal("stored true should win over default false")
	}
}

func TestBool_MissingKeyFallsBackToDefault(t *testing.T) {
	s := newSvc(&fakeRepo{})
	ctx := context.Background()

	if !s.Bool(ctx, "provider.bleve.enabled", true) {
		t.Fatal("missing key should return the default")
	}
	if s.Bool(ctx, "provider.bleve.enabled", false) {
		t.Fatal("missing key should return the default")
	}
}

func TestBool_UnparsableValueFallsBackToDefault(t *testing.T) {
	s := newSvc(&fakeRepo{values: map[string]string{"flag": "banana"}})

	if !s.Bool(context.Background(), "flag", true) {
		t.Fatal("unparsable value should return the default")
	}
}

func TestBool_RepoErrorFallsBackToDefault(t *testing.T) {
	s := newSvc(&fakeRepo{getErr: perr.Internalf("boom")})

	if !s.Bool(context.Background(), "flag", true) {
		t.Fatal("repo error should return the default")
	}
}

func TestString_DefaultsWhenMissing(t *testing.T) {
	s := newSvc(&fakeRepo{values: map[string]string{"greeting": "hello"}})
	ctx := context.Background()

	if got := s.String(ctx, "greeting", "x"); got != "hello" {
		t.Fatalf("expected stored value, got %q", got)
	}
	if got := s.String(ctx, "absent", "fallback"); got != "fallback" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestSet_RejectsEmptyKey(t *testing.T) {
	repo := &fakeRepo{}
	s := newSvc(repo)

	err := s.Set(context.Background(), "", "v")
	if perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if len(repo.sets) != 0 {
		t.Fatal("empty key must not reach the repo")
	}

	if err := s.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if repo.sets["k"] != "v" {
		t.Fatalf("value not persisted, got %+v", repo.sets)
	}
}
