package blevelocal

import (
	"context"
	"testing"

	"indexa/internal/core/docbuild"
	perr "indexa/internal/platform/errors"
)

func newMem(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestUpsertAndDelete(t *testing.T) {
	p := newMem(t)
	ctx := context.Background()

	doc := docbuild.Document{"source": "/petstore", "type": "pets", "id": "p1", "name": "Rex"}
	if err := p.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	n, err := p.DocCount("petstore-pets")
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 doc, got %d", n)
	}

	if err := p.Delete(ctx, "petstore-pets", "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, _ = p.DocCount("petstore-pets")
	if n != 0 {
		t.Fatalf("expected 0 docs after delete, got %d", n)
	}
}

func TestUpsertRequiresID(t *testing.T) {
	p := newMem(t)
	err := p.Upsert(context.Background(), docbuild.Document{"source": "/petstore", "type": "pets"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestUpsertBatchGroupsByIndex(t *testing.T) {
	p := newMem(t)
	ctx := context.Background()

	docs := []docbuild.Document{
		{"source": "/petstore", "type": "pets", "id": "p1"},
		{"source": "/petstore", "type": "pets", "id": "p2"},
		{"source": "/petstore", "type": "owners", "id": "o1"},
	}
	if err := p.UpsertBatch(ctx, docs); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if n, _ := p.DocCount("petstore-pets"); n != 2 {
		t.Fatalf("expected 2 pets, got %d", n)
	}
	if n, _ := p.DocCount("petstore-owners"); n != 1 {
		t.Fatalf("expected 1 owner, got %d", n)
	}
}

func TestDeleteBatch(t *testing.T) {
	p := newMem(t)
	ctx := context.Background()

	docs := []docbuild.Document{
		{"source": "/petstore", "type": "pets", "id": "p1"},
		{"source": "/petstore", "type": "pets", "id": "p2"},
		{"source": "/petstore", "type": "pets", "id": "p3"},
	}
	if err := p.UpsertBatch(ctx, docs); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if err := p.DeleteBatch(ctx, "petstore-pets", []string{"p1", "p3"}); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if n, _ := p.DocCount("petstore-pets"); n != 1 {
		t.Fatalf("expected 1 doc remaining, got %d", n)
	}
	if err := p.DeleteBatch(ctx, "petstore-pets", nil); err != nil {
		t.Fatalf("empty DeleteBatch: %v", err)
	}
}

func TestOnDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := New(Config{Path: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	doc := docbuild.Document{"source": "/petstore", "type": "pets", "id": "p1"}
	if err := p.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !p.Healthcheck(ctx) {
		t.Fatal("expected healthy provider")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	n, err := reopened.DocCount("petstore-pets")
	if err != nil {
		t.Fatalf("DocCount after reopen: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 doc after reopen, got %d", n)
	}
}

func TestEnsureIndex(t *testing.T) {
	p := newMem(t)
	if err := p.EnsureIndex(context.Background(), "petstore-pets"); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if n, _ := p.DocCount("petstore-pets"); n != 0 {
		t.Fatalf("expected empty index, got %d", n)
	}
}
