package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultBuffer = 256

// Recorder accepts entries without blocking the request path. Entries go
// onto a buffered channel drained by the Worker; when the buffer is full the
// entry is dropped and logged, never propagated to the caller.
type Recorder struct {
	inbox  chan Entry
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{
		inbox:  make(chan Entry, defaultBuffer),
		logger: logger,
	}
}

// Record queues an entry, filling in the ID and timestamp if absent.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	select {
	case r.inbox <- entry:
	default:
		r.logger.WarnContext(ctx, "audit buffer full, entry dropped",
			"method", entry.Method, "path", entry.Path)
	}
}

// Inbox exposes the entry channel for the Worker.
func (r *Recorder) Inbox() <-chan Entry { return r.inbox }
