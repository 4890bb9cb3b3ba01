package identity

import (
	"context"

	id "mobywatel/pkg/domain"
)

// AccountStore persists authentication principals. Save returns
// sentinel.ErrConflict when the email is already taken.
type AccountStore interface {
	Save(ctx context.Context, account Account) error
	Update(ctx context.Context, account Account) error
	FindByID(ctx context.Context, accountID id.UserID) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	Delete(ctx context.Context, accountID id.UserID) error
}

// CitizenStore persists citizen profiles. Save returns sentinel.ErrConflict
// when the PESEL is already registered. Delete cascades to the citizen's
// documents and requests.
type CitizenStore interface {
	Save(ctx context.Context, citizen Citizen) error
	Update(ctx context.Context, citizen Citizen) error
	FindByID(ctx context.Context, citizenID id.CitizenID) (Citizen, error)
	FindByAccount(ctx context.Context, accountID id.UserID) (Citizen, error)
	FindByPESEL(ctx context.Context, pesel string) (Citizen, error)
	List(ctx context.Context) ([]Citizen, error)
	Delete(ctx context.Context, citizenID id.CitizenID) error
}

// OfficialStore persists official profiles.
type OfficialStore interface {
	Save(ctx context.Context, official Official) error
	Update(ctx context.Context, official Official) error
	FindByID(ctx context.Context, officialID id.OfficialID) (Official, error)
	FindByAccount(ctx context.Context, accountID id.UserID) (Official, error)
	List(ctx context.Context) ([]Official, error)
	Delete(ctx context.Context, officialID id.OfficialID) error
}
