package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"mobywatel/internal/authz"
	"mobywatel/internal/platform/metrics"
	"mobywatel/internal/validator"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

// TokenIssuer is the token boundary the service depends on. Implemented by
// the jwttoken manager; faked in tests.
type TokenIssuer interface {
	Generate(accountID id.UserID, role Role) (string, error)
	Revoke(ctx context.Context, jti string) error
}

// Purger removes everything a citizen owns in another package's store.
// Deleting a citizen walks all purgers before the profile itself goes.
type Purger interface {
	DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error
}

// Service owns accounts and profiles: registration, login, the officials
// roster and the citizen admin operations.
type Service struct {
	accounts  AccountStore
	citizens  CitizenStore
	officials OfficialStore
	tokens    TokenIssuer
	gate      *authz.Gate
	purgers   []Purger
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(accounts AccountStore, citizens CitizenStore, officials OfficialStore, tokens TokenIssuer, gate *authz.Gate, purgers []Purger, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		citizens:  citizens,
		officials: officials,
		tokens:    tokens,
		gate:      gate,
		purgers:   purgers,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

type RegisterCitizenInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	BirthDate time.Time
	PESEL     string
	Gender    Gender
}

// RegisterCitizen validates the full registration payload and creates the
// account together with its citizen profile.
func (s *Service) RegisterCitizen(ctx context.Context, in RegisterCitizenInput) (Citizen, error) {
	if err := s.validateRegistration(in); err != nil {
		return Citizen{}, err
	}
	if _, err := s.accounts.FindByEmail(ctx, in.Email); err == nil {
		return Citizen{}, apperrors.New(apperrors.CodeConflict, "email is already taken")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to check email")
	}
	if _, err := s.citizens.FindByPESEL(ctx, in.PESEL); err == nil {
		return Citizen{}, apperrors.New(apperrors.CodeConflict, "PESEL is already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to check PESEL")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return Citizen{}, err
	}
	account := Account{
		ID:           id.NewUserID(),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleCitizen,
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Citizen{}, apperrors.New(apperrors.CodeConflict, "email is already taken")
		}
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save account")
	}

	citizen := Citizen{
		ID:        id.NewCitizenID(),
		AccountID: account.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		BirthDate: in.BirthDate,
		PESEL:     in.PESEL,
		Gender:    in.Gender,
	}
	if err := s.citizens.Save(ctx, citizen); err != nil {
		// Roll the orphaned account back before reporting.
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned account",
				"error", delErr, "account_id", account.ID.String())
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return Citizen{}, apperrors.New(apperrors.CodeConflict, "PESEL is already registered")
		}
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save citizen")
	}

	s.metrics.ObserveCitizenRegistered()
	s.logger.InfoContext(ctx, "citizen registered", "citizen_id", citizen.ID.String())
	return citizen, nil
}

func (s *Service) validateRegistration(in RegisterCitizenInput) error {
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return apperrors.New(apperrors.CodeValidation, "first name is required")
	case strings.TrimSpace(in.LastName) == "":
		return apperrors.New(apperrors.CodeValidation, "last name is required")
	case !validator.EmailOK(in.Email):
		return apperrors.New(apperrors.CodeValidation, "email is malformed")
	case !validator.PasswordOK(in.Password):
		return apperrors.New(apperrors.CodeValidation, "password does not meet the policy")
	case in.Gender != GenderMale && in.Gender != GenderFemale:
		return apperrors.New(apperrors.CodeValidation, "gender is required")
	case in.BirthDate.IsZero():
		return apperrors.New(apperrors.CodeValidation, "birth date is required")
	case in.BirthDate.After(s.now()):
		return apperrors.New(apperrors.CodeValidation, "birth date is in the future")
	case !validator.PESEL(in.PESEL, in.BirthDate, validator.Gender(in.Gender)):
		return apperrors.New(apperrors.CodeValidation, "PESEL does not match birth date and gender")
	}
	return nil
}

// RegisterAdmin creates an administrator account. Seed path, no profile.
func (s *Service) RegisterAdmin(ctx context.Context, email, password string) (Account, error) {
	if !validator.EmailOK(email) {
		return Account{}, apperrors.New(apperrors.CodeValidation, "email is malformed")
	}
	if !validator.PasswordOK(password) {
		return Account{}, apperrors.New(apperrors.CodeValidation, "password does not meet the policy")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return Account{}, err
	}
	account := Account{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Account{}, apperrors.New(apperrors.CodeConflict, "email is already taken")
		}
		return Account{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save account")
	}
	return account, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password report the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, Role, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", "", apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
		}
		return "", "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to load account")
	}
	if !verifyPassword(password, account.PasswordHash) {
		return "", "", apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
	}
	token, err := s.tokens.Generate(account.ID, account.Role)
	if err != nil {
		return "", "", err
	}
	s.logger.InfoContext(ctx, "login", "account_id", account.ID.String(), "role", string(account.Role))
	return token, account.Role, nil
}

// Logout revokes the presented token by its JTI.
func (s *Service) Logout(ctx context.Context, jti string) error {
	return s.tokens.Revoke(ctx, jti)
}

// CitizenByAccount resolves the citizen profile behind an authenticated
// account.
func (s *Service) CitizenByAccount(ctx context.Context, accountID id.UserID) (Citizen, error) {
	citizen, err := s.citizens.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Citizen{}, apperrors.New(apperrors.CodeNotFound, "citizen profile not found")
		}
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load citizen")
	}
	return citizen, nil
}

// OfficialByAccount resolves the official profile behind an authenticated
// account.
func (s *Service) OfficialByAccount(ctx context.Context, accountID id.UserID) (Official, error) {
	official, err := s.officials.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Official{}, apperrors.New(apperrors.CodeNotFound, "official profile not found")
		}
		return Official{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load official")
	}
	return official, nil
}

// GetCitizen fetches a citizen by ID. Restricted to officials and admins.
func (s *Service) GetCitizen(ctx context.Context, p authz.Principal, citizenID id.CitizenID) (Citizen, error) {
	if err := s.gate.Require(p, authz.OpManageCitizens); err != nil {
		return Citizen{}, err
	}
	return s.getCitizen(ctx, citizenID)
}

func (s *Service) getCitizen(ctx context.Context, citizenID id.CitizenID) (Citizen, error) {
	citizen, err := s.citizens.FindByID(ctx, citizenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Citizen{}, apperrors.New(apperrors.CodeNotFound, "citizen not found")
		}
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load citizen")
	}
	return citizen, nil
}

// GetCitizenByPESEL fetches a citizen by national identifier.
func (s *Service) GetCitizenByPESEL(ctx context.Context, p authz.Principal, pesel string) (Citizen, error) {
	if err := s.gate.Require(p, authz.OpManageCitizens); err != nil {
		return Citizen{}, err
	}
	citizen, err := s.citizens.FindByPESEL(ctx, pesel)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Citizen{}, apperrors.New(apperrors.CodeNotFound, "citizen not found")
		}
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load citizen")
	}
	return citizen, nil
}

// ListCitizens returns all citizens ordered by PESEL.
func (s *Service) ListCitizens(ctx context.Context, p authz.Principal) ([]Citizen, error) {
	if err := s.gate.Require(p, authz.OpManageCitizens); err != nil {
		return nil, err
	}
	citizens, err := s.citizens.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list citizens")
	}
	return citizens, nil
}

type UpdateCitizenInput struct {
	FirstName *string
	LastName  *string
	PESEL     *string
	BirthDate *time.Time
	Gender    *Gender
}

// UpdateCitizen applies a partial update. Absent or blank fields keep the
// existing value, including the birth date. After the fields are applied the
// PESEL must still agree with the birth date and gender.
func (s *Service) UpdateCitizen(ctx context.Context, p authz.Principal, citizenID id.CitizenID, in UpdateCitizenInput) (Citizen, error) {
	if err := s.gate.Require(p, authz.OpManageCitizens); err != nil {
		return Citizen{}, err
	}
	citizen, err := s.getCitizen(ctx, citizenID)
	if err != nil {
		return Citizen{}, err
	}

	if validator.FieldSet(in.FirstName) {
		citizen.FirstName = *in.FirstName
	}
	if validator.FieldSet(in.LastName) {
		citizen.LastName = *in.LastName
	}
	if validator.FieldSet(in.PESEL) {
		citizen.PESEL = *in.PESEL
	}
	if in.BirthDate != nil && !in.BirthDate.IsZero() {
		citizen.BirthDate = *in.BirthDate
	}
	if in.Gender != nil {
		if *in.Gender != GenderMale && *in.Gender != GenderFemale {
			return Citizen{}, apperrors.Newf(apperrors.CodeValidation, "unknown gender %q", *in.Gender)
		}
		citizen.Gender = *in.Gender
	}

	if citizen.BirthDate.After(s.now()) {
		return Citizen{}, apperrors.New(apperrors.CodeValidation, "birth date is in the future")
	}
	if !validator.PESEL(citizen.PESEL, citizen.BirthDate, validator.Gender(citizen.Gender)) {
		return Citizen{}, apperrors.New(apperrors.CodeValidation, "PESEL does not match birth date and gender")
	}

	if err := s.citizens.Update(ctx, citizen); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Citizen{}, apperrors.New(apperrors.CodeConflict, "PESEL is already registered")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return Citizen{}, apperrors.New(apperrors.CodeNotFound, "citizen not found")
		}
		return Citizen{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to update citizen")
	}
	return citizen, nil
}

// DeleteCitizen removes a citizen and everything they own: documents and
// pending requests go through the purgers, then the profile and account.
func (s *Service) DeleteCitizen(ctx context.Context, p authz.Principal, citizenID id.CitizenID) error {
	if err := s.gate.Require(p, authz.OpManageCitizens); err != nil {
		return err
	}
	citizen, err := s.getCitizen(ctx, citizenID)
	if err != nil {
		return err
	}
	for _, purger := range s.purgers {
		if err := purger.DeleteByCitizen(ctx, citizenID); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete citizen data")
		}
	}
	if err := s.citizens.Delete(ctx, citizenID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete citizen")
	}
	if err := s.accounts.Delete(ctx, citizen.AccountID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete account")
	}
	s.logger.InfoContext(ctx, "citizen deleted", "citizen_id", citizenID.String())
	return nil
}

type CreateOfficialInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Position  string
}

// CreateOfficial provisions an official account with its profile.
func (s *Service) CreateOfficial(ctx context.Context, p authz.Principal, in CreateOfficialInput) (Official, error) {
	if err := s.gate.Require(p, authz.OpManageOfficials); err != nil {
		return Official{}, err
	}
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return Official{}, apperrors.New(apperrors.CodeValidation, "first name is required")
	case strings.TrimSpace(in.LastName) == "":
		return Official{}, apperrors.New(apperrors.CodeValidation, "last name is required")
	case strings.TrimSpace(in.Position) == "":
		return Official{}, apperrors.New(apperrors.CodeValidation, "position is required")
	case !validator.EmailOK(in.Email):
		return Official{}, apperrors.New(apperrors.CodeValidation, "email is malformed")
	case !validator.PasswordOK(in.Password):
		return Official{}, apperrors.New(apperrors.CodeValidation, "password does not meet the policy")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return Official{}, err
	}
	account := Account{
		ID:           id.NewUserID(),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleOfficial,
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Official{}, apperrors.New(apperrors.CodeConflict, "email is already taken")
		}
		return Official{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save account")
	}

	official := Official{
		ID:        id.NewOfficialID(),
		AccountID: account.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Position:  in.Position,
	}
	if err := s.officials.Save(ctx, official); err != nil {
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned account",
				"error", delErr, "account_id", account.ID.String())
		}
		return Official{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save official")
	}
	s.logger.InfoContext(ctx, "official created", "official_id", official.ID.String())
	return official, nil
}

type UpdateOfficialInput struct {
	FirstName *string
	LastName  *string
	Position  *string
}

// UpdateOfficial applies a partial update to an official's profile.
func (s *Service) UpdateOfficial(ctx context.Context, p authz.Principal, officialID id.OfficialID, in UpdateOfficialInput) (Official, error) {
	if err := s.gate.Require(p, authz.OpManageOfficials); err != nil {
		return Official{}, err
	}
	official, err := s.officials.FindByID(ctx, officialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Official{}, apperrors.New(apperrors.CodeNotFound, "official not found")
		}
		return Official{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load official")
	}
	if validator.FieldSet(in.FirstName) {
		official.FirstName = *in.FirstName
	}
	if validator.FieldSet(in.LastName) {
		official.LastName = *in.LastName
	}
	if validator.FieldSet(in.Position) {
		official.Position = *in.Position
	}
	if err := s.officials.Update(ctx, official); err != nil {
		return Official{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to update official")
	}
	return official, nil
}

// DeleteOfficial removes an official profile and its account. Documents the
// official issued keep their attribution.
func (s *Service) DeleteOfficial(ctx context.Context, p authz.Principal, officialID id.OfficialID) error {
	if err := s.gate.Require(p, authz.OpManageOfficials); err != nil {
		return err
	}
	official, err := s.officials.FindByID(ctx, officialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "official not found")
		}
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to load official")
	}
	if err := s.officials.Delete(ctx, officialID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete official")
	}
	if err := s.accounts.Delete(ctx, official.AccountID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete account")
	}
	return nil
}

// ListOfficials returns the roster ordered by last name.
func (s *Service) ListOfficials(ctx context.Context, p authz.Principal) ([]Official, error) {
	if err := s.gate.Require(p, authz.OpManageOfficials); err != nil {
		return nil, err
	}
	officials, err := s.officials.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list officials")
	}
	return officials, nil
}
