// Package search defines the provider capability contract and the enabled-provider registry
package search

import (
	"context"

	"indexa/internal/adapters/search/indexname"
	"indexa/internal/core/docbuild"
)

// Provider is the uniform capability contract all search backends implement
type Provider interface {
	// Name is a stable identifier used in settings flags and failure accounting
	Name() string

	Upsert(ctx context.Context, doc docbuild.Document) error
	UpsertBatch(ctx context.Context, docs []docbuild.Document) error

	Delete(ctx context.Context, indexName, documentID string) error
	DeleteBatch(ctx context.Context, indexName string, documentIDs []string) error

	// EnsureIndex is idempotent creation/verification
	EnsureIndex(ctx context.Context, indexName string) error

	// Healthcheck is a non-throwing liveness probe
	Healthcheck(ctx context.Context) bool
}

// IndexName derives the provider index name from (source, entityType)
func IndexName(source, entityType string) string { return indexname.Format(source, entityType) }

// IndexNameFor reads source and type off a built document
func IndexNameFor(doc docbuild.Document) string { return indexname.For(doc) }

// GroupByIndex buckets documents by their computed index name
func GroupByIndex(docs []docbuild.Document) map[string][]docbuild.Document {
	return indexname.Group(docs)
}

// DocumentID reads the id off a document, empty when absent or not a string
func DocumentID(doc docbuild.Document) string {
	id, _ := doc["id"].(string)
	return id
}
