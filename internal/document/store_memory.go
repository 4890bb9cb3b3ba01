package document

import (
	"context"
	"sort"
	"sync"

	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{documents: make(map[id.DocumentID]Document)}
}

func (s *InMemoryStore) Save(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, docID id.DocumentID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.documents[docID]; ok {
		return cloneDocument(doc), nil
	}
	return Document{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByCitizenAndKind(_ context.Context, citizenID id.CitizenID, kind Kind) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.CitizenID == citizenID && doc.Kind == kind {
			return cloneDocument(doc), nil
		}
	}
	return Document{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByCitizen(_ context.Context, citizenID id.CitizenID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []Document
	for _, doc := range s.documents {
		if doc.CitizenID == citizenID {
			docs = append(docs, cloneDocument(doc))
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Kind != docs[j].Kind {
			return docs[i].Kind < docs[j].Kind
		}
		return docs[i].IssueDate.After(docs[j].IssueDate)
	})
	return docs, nil
}

func (s *InMemoryStore) DeleteByCitizen(_ context.Context, citizenID id.CitizenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for docID, doc := range s.documents {
		if doc.CitizenID == citizenID {
			delete(s.documents, docID)
		}
	}
	return nil
}

// cloneDocument guards against callers mutating the shared categories slice.
func cloneDocument(doc Document) Document {
	if doc.Categories != nil {
		doc.Categories = append([]LicenseCategory(nil), doc.Categories...)
	}
	return doc
}
