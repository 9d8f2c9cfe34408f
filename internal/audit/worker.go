package audit

import "context"

// Sink receives audit events asynchronously (Kafka, external SIEM).
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Worker consumes audit events from a channel and forwards them to a sink.
// It keeps background publishing off the request path and testable without
// wiring a broker.
type Worker struct {
	sink  Sink
	inbox <-chan Event
}

func NewWorker(sink Sink, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil {
				return err
			}
		}
	}
}
