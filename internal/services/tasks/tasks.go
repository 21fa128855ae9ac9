// Package tasks provides the in-process dispatch queue for indexing work.
// It stands in for an external task runner: producers enqueue by id, a small
// worker pool executes the registered handlers
package tasks

import (
	"context"
	"sync"

	"indexa/internal/platform/config"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
)

// Kind discriminates queued work
type Kind string

// Task kinds
const (
	KindIndexEvent Kind = "index_event"
	KindReindex    Kind = "reindex"
)

// Task is one queued unit of work, identified by the record it points at
type Task struct {
	Kind Kind
	ID   string
}

// Enqueuer is the producer surface
type Enqueuer interface {
	EnqueueIndexEvent(ctx context.Context, eventID string) error
	EnqueueReindex(ctx context.Context, jobID string) error
}

// Handlers are the consumer callbacks, one per task kind
type Handlers struct {
	IndexEvent func(ctx context.Context, eventID string) error
	Reindex    func(ctx context.Context, jobID string) error
}

// Config controls the dispatcher
type Config struct {
	QueueSize int
	Workers   int
}

// FromConfig reads with TASKS_ prefix
func FromConfig(cfg config.Conf) Config {
	c := cfg.Prefix("TASKS_")
	return Config{
		QueueSize: c.MayInt("QUEUE_SIZE", 256),
		Workers:   c.MayInt("WORKERS", 4),
	}
}

// Dispatcher is a bounded in-process queue with a fixed worker pool
type Dispatcher struct {
	cfg      Config
	handlers Handlers
	queue    chan Task
	log      logger.Logger

	startOnce sync.Once
}

// NewDispatcher constructs the dispatcher, applying defaults for zero config
func NewDispatcher(cfg Config, h Handlers) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Dispatcher{
		cfg:      cfg,
		handlers: h,
		queue:    make(chan Task, cfg.QueueSize),
		log:      *logger.Named("tasks"),
	}
}

// EnqueueIndexEvent queues a stored event for single entity indexing
func (d *Dispatcher) EnqueueIndexEvent(ctx context.Context, eventID string) error {
	return d.enqueue(ctx, Task{Kind: KindIndexEvent, ID: eventID})
}

// EnqueueReindex queues a reindex job for execution
func (d *Dispatcher) EnqueueReindex(ctx context.Context, jobID string) error {
	return d.enqueue(ctx, Task{Kind: KindReindex, ID: jobID})
}

// enqueue blocks until there is queue space or the context ends
func (d *Dispatcher) enqueue(ctx context.Context, t Task) error {
	select {
	case d.queue <- t:
		return nil
	case <-ctx.Done():
		return perr.Unavailablef("task queue unavailable: %v", ctx.Err())
	}
}

// Run starts the worker pool and blocks until ctx ends.
// Handler errors are logged, a failed task is not retried
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	d.startOnce.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.worker(ctx)
			}()
		}
	})
	wg.Wait()
	return ctx.Err()
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.queue:
			d.dispatch(ctx, t)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, t Task) {
	var err error
	switch t.Kind {
	case KindIndexEvent:
		if d.handlers.IndexEvent == nil {
			err = perr.Internalf("no index event handler registered")
		} else {
			err = d.handlers.IndexEvent(ctx, t.ID)
		}
	case KindReindex:
		if d.handlers.Reindex == nil {
			err = perr.Internalf("no reindex handler registered")
		} else {
			err = d.handlers.Reindex(ctx, t.ID)
		}
	default:
		err = perr.Internalf("unknown task kind %q", t.Kind)
	}
	if err != nil {
		d.log.Error().Err(err).Str("kind", string(t.Kind)).Str("id", t.ID).Msg("task failed")
	}
}
