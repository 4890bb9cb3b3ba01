package audit

import (
	"context"
	"sort"
	"sync"
)

// Store persists audit entries. Append-only; nothing in the core ever
// mutates or deletes an entry.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := append([]Entry(nil), s.entries...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
