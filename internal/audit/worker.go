package audit

import (
	"context"
	"log/slog"
)

// Worker drains the recorder's inbox into the store. Append failures are
// logged and skipped; the worker stops only when its context is cancelled.
type Worker struct {
	store  Store
	inbox  <-chan Entry
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Entry, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return ctx.Err()
		case entry := <-w.inbox:
			w.append(ctx, entry)
		}
	}
}

// drain flushes whatever is still buffered at shutdown.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case entry := <-w.inbox:
			w.append(ctx, entry)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, entry Entry) {
	if err := w.store.Append(context.WithoutCancel(ctx), entry); err != nil {
		w.logger.ErrorContext(ctx, "failed to append audit entry",
			"error", err, "path", entry.Path)
	}
}
