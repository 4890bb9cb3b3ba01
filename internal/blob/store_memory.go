package blob

import (
	"context"
	"fmt"
	"strings"
	"sync"

	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

type object struct {
	data        []byte
	contentType string
}

// InMemoryStore keeps photos in process memory. Default for local runs and
// tests when no MinIO endpoint is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string]object)}
}

func (s *InMemoryStore) Store(_ context.Context, citizenID id.CitizenID, requestID id.RequestID, data []byte, contentType string) (string, error) {
	if err := validatePhoto(data, contentType); err != nil {
		return "", err
	}
	ref := fmt.Sprintf("%s/%s", citizenID, requestID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[ref] = object{data: append([]byte(nil), data...), contentType: contentType}
	return ref, nil
}

func (s *InMemoryStore) Resolve(_ context.Context, ref string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[ref]
	if !ok {
		return nil, "", sentinel.ErrNotFound
	}
	return append([]byte(nil), obj.data...), obj.contentType, nil
}

func (s *InMemoryStore) DeleteByCitizen(_ context.Context, citizenID id.CitizenID) error {
	prefix := citizenID.String() + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	for ref := range s.objects {
		if strings.HasPrefix(ref, prefix) {
			delete(s.objects, ref)
		}
	}
	return nil
}
