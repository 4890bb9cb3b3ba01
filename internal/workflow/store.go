package workflow

import (
	"context"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	id "mobywatel/pkg/domain"
)

// IssueRequestStore persists document-issue requests. FindByID inside a
// transaction must lock the row for the duration of the transaction.
type IssueRequestStore interface {
	Save(ctx context.Context, req IssueRequest) error
	Update(ctx context.Context, req IssueRequest) error
	FindByID(ctx context.Context, reqID id.RequestID) (IssueRequest, error)
	ListPending(ctx context.Context) ([]IssueRequest, error)
	ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]IssueRequest, error)
	DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error
}

// DataUpdateStore persists personal-data-change requests, with the same
// locking contract as IssueRequestStore.
type DataUpdateStore interface {
	Save(ctx context.Context, req DataUpdateRequest) error
	Update(ctx context.Context, req DataUpdateRequest) error
	FindByID(ctx context.Context, reqID id.RequestID) (DataUpdateRequest, error)
	ListPending(ctx context.Context) ([]DataUpdateRequest, error)
	DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error
}

// TxStores are the stores a processing step may touch, all bound to the same
// transaction.
type TxStores struct {
	IssueRequests IssueRequestStore
	DataUpdates   DataUpdateStore
	Documents     document.Store
	Citizens      identity.CitizenStore
}

// Tx executes fn atomically. The postgres implementation wraps a database
// transaction with row locks on the request being processed; the in-memory
// implementation serializes transactions on a mutex.
type Tx interface {
	RunInTx(ctx context.Context, fn func(stores TxStores) error) error
}
