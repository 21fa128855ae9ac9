// Package domain defines the indexing orchestrator ports and types
package domain

import (
	"context"
	"time"

	eventsdom "indexa/internal/services/events/domain"
	registrydom "indexa/internal/services/registry/domain"
)

// BatchArgs selects one page of entities from an upstream service
type BatchArgs struct {
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	Page          int
	PerPage       int
}

// BatchResult is the per page accounting of a batch indexing run.
// TotalInPage < PerPage signals the last page to the caller
type BatchResult struct {
	Indexed     int      `json:"indexed"`
	Failed      int      `json:"failed"`
	EntityIDs   []string `json:"entity_ids"`
	TotalInPage int      `json:"total_in_page"`
}

// IndexerPort drives single event and batch indexing
type IndexerPort interface {
	// IndexEvent routes one event to its owning service, fetches the entity
	// and upserts the built document to every enabled provider.
	// Routing misses and unparseable subjects are dropped, not errors
	IndexEvent(ctx context.Context, ev eventsdom.Event) error

	// BatchIndex fetches one page of entities for (service, entityType) and
	// bulk upserts the built documents to every enabled provider
	BatchIndex(
		ctx context.Context,
		svc registrydom.DomainService,
		entityType string,
		args BatchArgs,
	) (BatchResult, error)
}
