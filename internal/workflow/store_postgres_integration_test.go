//go:build integration

package workflow_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/internal/workflow"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
	"mobywatel/pkg/testutil/containers"
)

type PostgresWorkflowSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	issues   *workflow.PostgresIssueRequestStore
	updates  *workflow.PostgresDataUpdateStore
	tx       *workflow.PostgresTx
	citizens *identity.PostgresCitizenStore
	accounts *identity.PostgresAccountStore
}

func TestPostgresWorkflowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresWorkflowSuite))
}

func (s *PostgresWorkflowSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.issues = workflow.NewPostgresIssueRequestStore(s.postgres.DB)
	s.updates = workflow.NewPostgresDataUpdateStore(s.postgres.DB)
	s.tx = workflow.NewPostgresTx(s.postgres.DB)
	s.citizens = identity.NewPostgresCitizenStore(s.postgres.DB)
	s.accounts = identity.NewPostgresAccountStore(s.postgres.DB)
}

func (s *PostgresWorkflowSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"issue_requests", "data_update_requests", "documents", "citizens", "accounts")
	s.Require().NoError(err)
}

func (s *PostgresWorkflowSuite) seedCitizen() identity.Citizen {
	ctx := context.Background()
	account := identity.Account{
		ID:           id.NewUserID(),
		Email:        "citizen+" + id.NewUserID().String() + "@example.com",
		PasswordHash: "x",
		Role:         identity.RoleCitizen,
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.accounts.Save(ctx, account))

	citizen := identity.Citizen{
		ID:        id.NewCitizenID(),
		AccountID: account.ID,
		FirstName: "Jan",
		LastName:  "Kowalski",
		BirthDate: time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		PESEL:     "90051512333",
		Gender:    identity.GenderMale,
	}
	s.Require().NoError(s.citizens.Save(ctx, citizen))
	return citizen
}

func (s *PostgresWorkflowSuite) TestIssueRequestRoundTrip() {
	ctx := context.Background()
	citizen := s.seedCitizen()

	req := workflow.IssueRequest{
		ID:          id.NewRequestID(),
		CitizenID:   citizen.ID,
		Kind:        document.KindDriverLicense,
		PhotoRef:    "photos/abc",
		Categories:  []document.LicenseCategory{document.CategoryA1, document.CategoryB},
		RequestDate: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.issues.Save(ctx, req))

	got, err := s.issues.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.Kind, got.Kind)
	s.Equal(req.Categories, got.Categories)
	s.Equal(req.PhotoRef, got.PhotoRef)
	s.False(got.Processed)

	pending, err := s.issues.ListPending(ctx)
	s.Require().NoError(err)
	s.Len(pending, 1)

	got.Processed = true
	got.Approved = true
	s.Require().NoError(s.issues.Update(ctx, got))

	pending, err = s.issues.ListPending(ctx)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *PostgresWorkflowSuite) TestFindByIDNotFound() {
	_, err := s.issues.FindByID(context.Background(), id.NewRequestID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresWorkflowSuite) TestDataUpdateRequestOptionalFields() {
	ctx := context.Background()
	citizen := s.seedCitizen()

	lastName := "Nowak"
	gender := identity.GenderFemale
	req := workflow.DataUpdateRequest{
		ID:                id.NewRequestID(),
		CitizenID:         citizen.ID,
		RequestedLastName: &lastName,
		RequestedGender:   &gender,
		RequestDate:       time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.updates.Save(ctx, req))

	got, err := s.updates.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Nil(got.RequestedFirstName)
	s.Require().NotNil(got.RequestedLastName)
	s.Equal("Nowak", *got.RequestedLastName)
	s.Require().NotNil(got.RequestedGender)
	s.Equal(identity.GenderFemale, *got.RequestedGender)
}

func (s *PostgresWorkflowSuite) TestDeleteByCitizenCascade() {
	ctx := context.Background()
	citizen := s.seedCitizen()

	req := workflow.IssueRequest{
		ID:          id.NewRequestID(),
		CitizenID:   citizen.ID,
		Kind:        document.KindIdentityCard,
		Citizenship: "PL",
		PhotoRef:    "photos/abc",
		RequestDate: time.Now().UTC(),
	}
	s.Require().NoError(s.issues.Save(ctx, req))

	s.Require().NoError(s.issues.DeleteByCitizen(ctx, citizen.ID))
	_, err := s.issues.FindByID(ctx, req.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentProcessing verifies the row lock in the transaction-scoped
// store: concurrent decisions on the same request end with exactly one winner.
func (s *PostgresWorkflowSuite) TestConcurrentProcessing() {
	ctx := context.Background()
	citizen := s.seedCitizen()

	req := workflow.IssueRequest{
		ID:          id.NewRequestID(),
		CitizenID:   citizen.ID,
		Kind:        document.KindIdentityCard,
		Citizenship: "PL",
		PhotoRef:    "photos/abc",
		RequestDate: time.Now().UTC(),
	}
	s.Require().NoError(s.issues.Save(ctx, req))

	const goroutines = 10
	var wg sync.WaitGroup
	var succeeded, conflicted atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.tx.RunInTx(ctx, func(stores workflow.TxStores) error {
				current, err := stores.IssueRequests.FindByID(ctx, req.ID)
				if err != nil {
					return err
				}
				if current.Processed {
					return apperrors.New(apperrors.CodeConflict, "request already processed")
				}
				current.Processed = true
				current.Approved = true
				return stores.IssueRequests.Update(ctx, current)
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperrors.Is(err, apperrors.CodeConflict):
				conflicted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), succeeded.Load())
	s.Equal(int32(goroutines-1), conflicted.Load())
}
