package document

import (
	"context"

	id "mobywatel/pkg/domain"
)

// Store persists documents. FindByCitizenAndKind returns
// sentinel.ErrNotFound when the citizen holds no document of that kind.
type Store interface {
	Save(ctx context.Context, doc Document) error
	Update(ctx context.Context, doc Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (Document, error)
	FindByCitizenAndKind(ctx context.Context, citizenID id.CitizenID, kind Kind) (Document, error)
	ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]Document, error)
	DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error
}
