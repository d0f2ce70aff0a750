package audit

import "context"

// Queue is a Store whose writes go through a buffered inbox drained by a
// Worker, keeping persistence off the transition hot path. Reads go to the
// backing store directly, so listings lag writes by at most the inbox depth.
type Queue struct {
	store Store
	inbox chan Event
}

func NewQueue(store Store, size int) *Queue {
	return &Queue{store: store, inbox: make(chan Event, size)}
}

func (q *Queue) Append(ctx context.Context, event Event) error {
	select {
	case q.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) ListByAsset(ctx context.Context, asset string) ([]Event, error) {
	return q.store.ListByAsset(ctx, asset)
}

// Worker returns the drain loop for this queue; run it for the lifetime of
// the process.
func (q *Queue) Worker() *Worker {
	return NewWorker(q.store, q.inbox)
}

// Worker consumes audit events from a channel and persists them. It keeps
// background processing off the transition hot path without wiring queue
// implementations into the services.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
