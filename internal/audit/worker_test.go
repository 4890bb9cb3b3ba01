package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderFillsDefaults(t *testing.T) {
	recorder := NewRecorder(discardLogger())
	recorder.Record(context.Background(), Entry{Method: "GET", Path: "/api/citizen/docs"})

	select {
	case entry := <-recorder.Inbox():
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.Timestamp.IsZero())
		assert.Equal(t, "/api/citizen/docs", entry.Path)
	default:
		t.Fatal("expected an entry on the inbox")
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	recorder := NewRecorder(discardLogger())
	for i := 0; i < defaultBuffer+10; i++ {
		recorder.Record(context.Background(), Entry{Method: "GET", Path: "/x"})
	}
	// The buffer holds exactly defaultBuffer entries; the rest were dropped
	// without blocking.
	assert.Len(t, recorder.inbox, defaultBuffer)
}

func TestWorkerDrainsInboxIntoStore(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(discardLogger())
	worker := NewWorker(store, recorder.Inbox(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	recorder.Record(ctx, Entry{Method: "POST", Path: "/api/auth/login", Status: 200})
	recorder.Record(ctx, Entry{Method: "GET", Path: "/api/citizen/docs", Status: 200})

	require.Eventually(t, func() bool {
		entries, err := store.ListRecent(context.Background(), 0)
		return err == nil && len(entries) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerFlushesBufferOnShutdown(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(discardLogger())
	worker := NewWorker(store, recorder.Inbox(), discardLogger())

	// Queue entries before the worker ever runs, then cancel immediately.
	for i := 0; i < 5; i++ {
		recorder.Record(context.Background(), Entry{Method: "GET", Path: "/x"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = worker.Run(ctx)

	entries, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestListRecentOrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, Entry{
			Path:      "/x",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp), "newest first")
}
