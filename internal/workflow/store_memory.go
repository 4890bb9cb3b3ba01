package workflow

import (
	"context"
	"sort"
	"sync"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

type InMemoryIssueRequestStore struct {
	mu       sync.RWMutex
	requests map[id.RequestID]IssueRequest
}

func NewInMemoryIssueRequestStore() *InMemoryIssueRequestStore {
	return &InMemoryIssueRequestStore{requests: make(map[id.RequestID]IssueRequest)}
}

func (s *InMemoryIssueRequestStore) Save(_ context.Context, req IssueRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = cloneIssueRequest(req)
	return nil
}

func (s *InMemoryIssueRequestStore) Update(_ context.Context, req IssueRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.requests[req.ID] = cloneIssueRequest(req)
	return nil
}

func (s *InMemoryIssueRequestStore) FindByID(_ context.Context, reqID id.RequestID) (IssueRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if req, ok := s.requests[reqID]; ok {
		return cloneIssueRequest(req), nil
	}
	return IssueRequest{}, sentinel.ErrNotFound
}

func (s *InMemoryIssueRequestStore) ListPending(_ context.Context) ([]IssueRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []IssueRequest
	for _, req := range s.requests {
		if !req.Processed {
			pending = append(pending, cloneIssueRequest(req))
		}
	}
	sortIssueRequests(pending)
	return pending, nil
}

func (s *InMemoryIssueRequestStore) ListByCitizen(_ context.Context, citizenID id.CitizenID) ([]IssueRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var reqs []IssueRequest
	for _, req := range s.requests {
		if req.CitizenID == citizenID {
			reqs = append(reqs, cloneIssueRequest(req))
		}
	}
	sortIssueRequests(reqs)
	return reqs, nil
}

func (s *InMemoryIssueRequestStore) DeleteByCitizen(_ context.Context, citizenID id.CitizenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for reqID, req := range s.requests {
		if req.CitizenID == citizenID {
			delete(s.requests, reqID)
		}
	}
	return nil
}

func sortIssueRequests(reqs []IssueRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].RequestDate.Equal(reqs[j].RequestDate) {
			return reqs[i].RequestDate.Before(reqs[j].RequestDate)
		}
		return reqs[i].ID.String() < reqs[j].ID.String()
	})
}

func cloneIssueRequest(req IssueRequest) IssueRequest {
	if req.Categories != nil {
		req.Categories = append([]document.LicenseCategory(nil), req.Categories...)
	}
	return req
}

type InMemoryDataUpdateStore struct {
	mu       sync.RWMutex
	requests map[id.RequestID]DataUpdateRequest
}

func NewInMemoryDataUpdateStore() *InMemoryDataUpdateStore {
	return &InMemoryDataUpdateStore{requests: make(map[id.RequestID]DataUpdateRequest)}
}

func (s *InMemoryDataUpdateStore) Save(_ context.Context, req DataUpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = cloneDataUpdateRequest(req)
	return nil
}

func (s *InMemoryDataUpdateStore) Update(_ context.Context, req DataUpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.requests[req.ID] = cloneDataUpdateRequest(req)
	return nil
}

func (s *InMemoryDataUpdateStore) FindByID(_ context.Context, reqID id.RequestID) (DataUpdateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if req, ok := s.requests[reqID]; ok {
		return cloneDataUpdateRequest(req), nil
	}
	return DataUpdateRequest{}, sentinel.ErrNotFound
}

func (s *InMemoryDataUpdateStore) ListPending(_ context.Context) ([]DataUpdateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []DataUpdateRequest
	for _, req := range s.requests {
		if !req.Processed {
			pending = append(pending, cloneDataUpdateRequest(req))
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].RequestDate.Equal(pending[j].RequestDate) {
			return pending[i].RequestDate.Before(pending[j].RequestDate)
		}
		return pending[i].ID.String() < pending[j].ID.String()
	})
	return pending, nil
}

func (s *InMemoryDataUpdateStore) DeleteByCitizen(_ context.Context, citizenID id.CitizenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for reqID, req := range s.requests {
		if req.CitizenID == citizenID {
			delete(s.requests, reqID)
		}
	}
	return nil
}

// cloneDataUpdateRequest copies the optional field pointers so a caller
// cannot mutate a stored request through them.
func cloneDataUpdateRequest(req DataUpdateRequest) DataUpdateRequest {
	if req.RequestedFirstName != nil {
		v := *req.RequestedFirstName
		req.RequestedFirstName = &v
	}
	if req.RequestedLastName != nil {
		v := *req.RequestedLastName
		req.RequestedLastName = &v
	}
	if req.RequestedGender != nil {
		v := *req.RequestedGender
		req.RequestedGender = &v
	}
	return req
}

// InMemoryTx serializes whole transactions on one mutex. Coarse, but it gives
// the same at-most-once guarantee the postgres row lock gives.
type InMemoryTx struct {
	mu     sync.Mutex
	stores TxStores
}

func NewInMemoryTx(issues *InMemoryIssueRequestStore, updates *InMemoryDataUpdateStore, docs *document.InMemoryStore, citizens *identity.InMemoryCitizenStore) *InMemoryTx {
	return &InMemoryTx{stores: TxStores{
		IssueRequests: issues,
		DataUpdates:   updates,
		Documents:     docs,
		Citizens:      citizens,
	}}
}

func (t *InMemoryTx) RunInTx(_ context.Context, fn func(stores TxStores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.stores)
}
