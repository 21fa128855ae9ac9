package domain

import "context"

// ServicePort is the events surface used by transport and workers
type ServicePort interface {
	// Ingest stores an inbound event and hands it to the indexing queue
	Ingest(ctx context.Context, in IngestInput) (Event, error)
	Get(ctx context.Context, id string) (Event, error)
	List(ctx context.Context, q ListQuery) ([]Event, int, error)
}

// Enqueuer hands stored events to the indexing pipeline.
// A nil enqueuer means ingest stores without dispatching
type Enqueuer interface {
	EnqueueIndexEvent(ctx context.Context, eventID string) error
}
