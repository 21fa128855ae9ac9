package domain

import "context"

// ServicePort is the reindex job CRUD and control surface
type ServicePort interface {
	// Create stores a pending job and hands it to the dispatch queue
	Create(ctx context.Context, in CreateInput) (ReindexJob, error)
	Get(ctx context.Context, id string) (ReindexJob, error)
	List(ctx context.Context, q ListQuery) ([]ReindexJob, int, error)
	// Cancel transitions a pending or running job to cancelled.
	// Any other status is rejected as an invalid argument
	Cancel(ctx context.Context, id string) error
	// Run executes a job synchronously in the calling goroutine
	Run(ctx context.Context, id string) error
}

// EnginePort executes reindex jobs
type EnginePort interface {
	// Execute runs a job to a terminal status. The job must be pending or
	// running; a missing job is an error, not a silent drop
	Execute(ctx context.Context, jobID string) error
}

// Enqueuer hands created jobs to the dispatch queue.
// A nil enqueuer means create stores without dispatching
type Enqueuer interface {
	EnqueueReindex(ctx context.Context, jobID string) error
}
