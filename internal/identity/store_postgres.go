package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mobywatel/internal/platform/postgres"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

// querier is satisfied by *sql.DB and *sql.Tx so the same store code serves
// both the plain and the transaction-scoped paths.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresAccountStore struct {
	q querier
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{q: db}
}

func (s *PostgresAccountStore) Save(ctx context.Context, account Account) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(account.ID), account.Email, account.PasswordHash, string(account.Role), account.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *PostgresAccountStore) Update(ctx context.Context, account Account) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE accounts SET email = $2, password_hash = $3 WHERE id = $1`,
		uuid.UUID(account.ID), account.Email, account.PasswordHash)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresAccountStore) FindByID(ctx context.Context, accountID id.UserID) (Account, error) {
	return scanAccount(s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts WHERE id = $1`,
		uuid.UUID(accountID)))
}

func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	return scanAccount(s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts WHERE LOWER(email) = LOWER($1)`,
		email))
}

func (s *PostgresAccountStore) Delete(ctx context.Context, accountID id.UserID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, uuid.UUID(accountID))
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

func scanAccount(row *sql.Row) (Account, error) {
	var account Account
	var accountID uuid.UUID
	var role string
	err := row.Scan(&accountID, &account.Email, &account.PasswordHash, &role, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, sentinel.ErrNotFound
		}
		return Account{}, fmt.Errorf("scan account: %w", err)
	}
	account.ID = id.UserID(accountID)
	account.Role = Role(role)
	return account, nil
}

type PostgresCitizenStore struct {
	q querier
}

func NewPostgresCitizenStore(db *sql.DB) *PostgresCitizenStore {
	return &PostgresCitizenStore{q: db}
}

// NewPostgresCitizenStoreTx binds the store to an open transaction, for the
// workflow's approval path.
func NewPostgresCitizenStoreTx(tx *sql.Tx) *PostgresCitizenStore {
	return &PostgresCitizenStore{q: tx}
}

const citizenColumns = `id, account_id, first_name, last_name, birth_date, pesel, gender`

func (s *PostgresCitizenStore) Save(ctx context.Context, citizen Citizen) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO citizens (`+citizenColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(citizen.ID), uuid.UUID(citizen.AccountID), citizen.FirstName, citizen.LastName,
		citizen.BirthDate, citizen.PESEL, string(citizen.Gender))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save citizen: %w", err)
	}
	return nil
}

func (s *PostgresCitizenStore) Update(ctx context.Context, citizen Citizen) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE citizens SET first_name = $2, last_name = $3, birth_date = $4, pesel = $5, gender = $6 WHERE id = $1`,
		uuid.UUID(citizen.ID), citizen.FirstName, citizen.LastName, citizen.BirthDate,
		citizen.PESEL, string(citizen.Gender))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update citizen: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresCitizenStore) FindByID(ctx context.Context, citizenID id.CitizenID) (Citizen, error) {
	return scanCitizen(s.q.QueryRowContext(ctx,
		`SELECT `+citizenColumns+` FROM citizens WHERE id = $1`, uuid.UUID(citizenID)))
}

func (s *PostgresCitizenStore) FindByAccount(ctx context.Context, accountID id.UserID) (Citizen, error) {
	return scanCitizen(s.q.QueryRowContext(ctx,
		`SELECT `+citizenColumns+` FROM citizens WHERE account_id = $1`, uuid.UUID(accountID)))
}

func (s *PostgresCitizenStore) FindByPESEL(ctx context.Context, pesel string) (Citizen, error) {
	return scanCitizen(s.q.QueryRowContext(ctx,
		`SELECT `+citizenColumns+` FROM citizens WHERE pesel = $1`, pesel))
}

func (s *PostgresCitizenStore) List(ctx context.Context) ([]Citizen, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+citizenColumns+` FROM citizens ORDER BY pesel`)
	if err != nil {
		return nil, fmt.Errorf("list citizens: %w", err)
	}
	defer rows.Close()

	var citizens []Citizen
	for rows.Next() {
		citizen, err := scanCitizenRow(rows)
		if err != nil {
			return nil, err
		}
		citizens = append(citizens, citizen)
	}
	return citizens, rows.Err()
}

func (s *PostgresCitizenStore) Delete(ctx context.Context, citizenID id.CitizenID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM citizens WHERE id = $1`, uuid.UUID(citizenID))
	if err != nil {
		return fmt.Errorf("delete citizen: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCitizen(row *sql.Row) (Citizen, error) {
	return scanCitizenRow(row)
}

func scanCitizenRow(row rowScanner) (Citizen, error) {
	var citizen Citizen
	var citizenID, accountID uuid.UUID
	var gender string
	err := row.Scan(&citizenID, &accountID, &citizen.FirstName, &citizen.LastName,
		&citizen.BirthDate, &citizen.PESEL, &gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Citizen{}, sentinel.ErrNotFound
		}
		return Citizen{}, fmt.Errorf("scan citizen: %w", err)
	}
	citizen.ID = id.CitizenID(citizenID)
	citizen.AccountID = id.UserID(accountID)
	citizen.Gender = Gender(gender)
	return citizen, nil
}

type PostgresOfficialStore struct {
	q querier
}

func NewPostgresOfficialStore(db *sql.DB) *PostgresOfficialStore {
	return &PostgresOfficialStore{q: db}
}

const officialColumns = `id, account_id, first_name, last_name, position`

func (s *PostgresOfficialStore) Save(ctx context.Context, official Official) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO officials (`+officialColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(official.ID), uuid.UUID(official.AccountID), official.FirstName,
		official.LastName, official.Position)
	if err != nil {
		return fmt.Errorf("save official: %w", err)
	}
	return nil
}

func (s *PostgresOfficialStore) Update(ctx context.Context, official Official) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE officials SET first_name = $2, last_name = $3, position = $4 WHERE id = $1`,
		uuid.UUID(official.ID), official.FirstName, official.LastName, official.Position)
	if err != nil {
		return fmt.Errorf("update official: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresOfficialStore) FindByID(ctx context.Context, officialID id.OfficialID) (Official, error) {
	return scanOfficial(s.q.QueryRowContext(ctx,
		`SELECT `+officialColumns+` FROM officials WHERE id = $1`, uuid.UUID(officialID)))
}

func (s *PostgresOfficialStore) FindByAccount(ctx context.Context, accountID id.UserID) (Official, error) {
	return scanOfficial(s.q.QueryRowContext(ctx,
		`SELECT `+officialColumns+` FROM officials WHERE account_id = $1`, uuid.UUID(accountID)))
}

func (s *PostgresOfficialStore) List(ctx context.Context) ([]Official, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+officialColumns+` FROM officials ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("list officials: %w", err)
	}
	defer rows.Close()

	var officials []Official
	for rows.Next() {
		var official Official
		var officialID, accountID uuid.UUID
		if err := rows.Scan(&officialID, &accountID, &official.FirstName,
			&official.LastName, &official.Position); err != nil {
			return nil, fmt.Errorf("scan official: %w", err)
		}
		official.ID = id.OfficialID(officialID)
		official.AccountID = id.UserID(accountID)
		officials = append(officials, official)
	}
	return officials, rows.Err()
}

func (s *PostgresOfficialStore) Delete(ctx context.Context, officialID id.OfficialID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM officials WHERE id = $1`, uuid.UUID(officialID))
	if err != nil {
		return fmt.Errorf("delete official: %w", err)
	}
	return requireRow(res)
}

func scanOfficial(row *sql.Row) (Official, error) {
	var official Official
	var officialID, accountID uuid.UUID
	err := row.Scan(&officialID, &accountID, &official.FirstName, &official.LastName, &official.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Official{}, sentinel.ErrNotFound
		}
		return Official{}, fmt.Errorf("scan official: %w", err)
	}
	official.ID = id.OfficialID(officialID)
	official.AccountID = id.UserID(accountID)
	return official, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
