package tasks

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestDispatchRoutesByKind(t *testing.T) {
	var (
		mu      sync.Mutex
		events  []string
		reindex []string
	)
	done := make(chan struct{}, 4)
	d := NewDispatcher(Config{QueueSize: 8, Workers: 2}, Handlers{
		IndexEvent: func(_ context.Context, id string) error {
			mu.Lock()
			events = append(events, id)
			mu.Unlock()
			done <- struct{}{}
			return nil
		},
		Reindex: func(_ context.Context, id string) error {
			mu.Lock()
			reindex = append(reindex, id)
			mu.Unlock()
			done <- struct{}{}
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	if err := d.EnqueueIndexEvent(ctx, "ev-1"); err != nil {
		t.Fatalf("EnqueueIndexEvent: %v", err)
	}
	if err := d.EnqueueReindex(ctx, "job-1"); err != nil {
		t.Fatalf("EnqueueReindex: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 || events[0] != "ev-1" {
		t.Fatalf("unexpected event tasks %v", events)
	}
	if len(reindex) != 1 || reindex[0] != "job-1" {
		t.Fatalf("unexpected reindex tasks %v", reindex)
	}
}

func TestEnqueueRespectsContext(t *testing.T) {
	d := NewDispatcher(Config{QueueSize: 1, Workers: 1}, Handlers{})

	ctx := context.Background()
	if err := d.EnqueueIndexEvent(ctx, "fills-queue"); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}

	// queue is full and no worker is running, a cancelled context must unblock
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.EnqueueIndexEvent(cancelled, "blocked"); err == nil {
		t.Fatal("expected enqueue to fail on cancelled context")
	}
}

func TestHandlerErrorDoesNotStopWorkers(t *testing.T) {
	done := make(chan string, 2)
	d := NewDispatcher(Config{QueueSize: 4, Workers: 1}, Handlers{
		IndexEvent: func(_ context.Context, id string) error {
			done <- id
			if id == "bad" {
				return context.DeadlineExceeded
			}
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	_ = d.EnqueueIndexEvent(ctx, "bad")
	_ = d.EnqueueIndexEvent(ctx, "good")

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case id := <-done:
			got = append(got, id)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	if got[1] != "good" {
		t.Fatalf("worker should survive a failing task, got %v", got)
	}
}
