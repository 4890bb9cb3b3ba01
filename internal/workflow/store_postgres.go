package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresIssueRequestStore persists issue requests. The transaction-scoped
// variant locks the request row on FindByID so the processed-flag check and
// the subsequent mutation are serialized per request.
type PostgresIssueRequestStore struct {
	q       querier
	rowLock bool
}

func NewPostgresIssueRequestStore(db *sql.DB) *PostgresIssueRequestStore {
	return &PostgresIssueRequestStore{q: db}
}

func NewPostgresIssueRequestStoreTx(tx *sql.Tx) *PostgresIssueRequestStore {
	return &PostgresIssueRequestStore{q: tx, rowLock: true}
}

const issueRequestColumns = `id, citizen_id, kind, photo_ref, citizenship, categories, processed, approved, request_date`

func (s *PostgresIssueRequestStore) Save(ctx context.Context, req IssueRequest) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO issue_requests (`+issueRequestColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(req.ID), uuid.UUID(req.CitizenID), string(req.Kind), req.PhotoRef,
		req.Citizenship, joinCategories(req.Categories), req.Processed, req.Approved, req.RequestDate)
	if err != nil {
		return fmt.Errorf("save issue request: %w", err)
	}
	return nil
}

func (s *PostgresIssueRequestStore) Update(ctx context.Context, req IssueRequest) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE issue_requests SET processed = $2, approved = $3 WHERE id = $1`,
		uuid.UUID(req.ID), req.Processed, req.Approved)
	if err != nil {
		return fmt.Errorf("update issue request: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresIssueRequestStore) FindByID(ctx context.Context, reqID id.RequestID) (IssueRequest, error) {
	query := `SELECT ` + issueRequestColumns + ` FROM issue_requests WHERE id = $1`
	if s.rowLock {
		query += ` FOR UPDATE`
	}
	return scanIssueRequest(s.q.QueryRowContext(ctx, query, uuid.UUID(reqID)))
}

func (s *PostgresIssueRequestStore) ListPending(ctx context.Context) ([]IssueRequest, error) {
	return s.list(ctx,
		`SELECT `+issueRequestColumns+` FROM issue_requests WHERE NOT processed ORDER BY request_date, id`)
}

func (s *PostgresIssueRequestStore) ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]IssueRequest, error) {
	return s.list(ctx,
		`SELECT `+issueRequestColumns+` FROM issue_requests WHERE citizen_id = $1 ORDER BY request_date, id`,
		uuid.UUID(citizenID))
}

func (s *PostgresIssueRequestStore) list(ctx context.Context, query string, args ...any) ([]IssueRequest, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issue requests: %w", err)
	}
	defer rows.Close()

	var reqs []IssueRequest
	for rows.Next() {
		req, err := scanIssueRequestRow(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (s *PostgresIssueRequestStore) DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM issue_requests WHERE citizen_id = $1`, uuid.UUID(citizenID)); err != nil {
		return fmt.Errorf("delete issue requests: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssueRequest(row *sql.Row) (IssueRequest, error) {
	return scanIssueRequestRow(row)
}

func scanIssueRequestRow(row rowScanner) (IssueRequest, error) {
	var req IssueRequest
	var reqID, citizenID uuid.UUID
	var kind, categories string
	err := row.Scan(&reqID, &citizenID, &kind, &req.PhotoRef, &req.Citizenship,
		&categories, &req.Processed, &req.Approved, &req.RequestDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IssueRequest{}, sentinel.ErrNotFound
		}
		return IssueRequest{}, fmt.Errorf("scan issue request: %w", err)
	}
	req.ID = id.RequestID(reqID)
	req.CitizenID = id.CitizenID(citizenID)
	req.Kind = document.Kind(kind)
	req.Categories = splitCategories(categories)
	return req, nil
}

// PostgresDataUpdateStore persists personal-data-change requests with the
// same locking contract as the issue-request store.
type PostgresDataUpdateStore struct {
	q       querier
	rowLock bool
}

func NewPostgresDataUpdateStore(db *sql.DB) *PostgresDataUpdateStore {
	return &PostgresDataUpdateStore{q: db}
}

func NewPostgresDataUpdateStoreTx(tx *sql.Tx) *PostgresDataUpdateStore {
	return &PostgresDataUpdateStore{q: tx, rowLock: true}
}

const dataUpdateColumns = `id, citizen_id, requested_first_name, requested_last_name, requested_gender, processed, approved, request_date`

func (s *PostgresDataUpdateStore) Save(ctx context.Context, req DataUpdateRequest) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO data_update_requests (`+dataUpdateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(req.ID), uuid.UUID(req.CitizenID), req.RequestedFirstName, req.RequestedLastName,
		nullGender(req.RequestedGender), req.Processed, req.Approved, req.RequestDate)
	if err != nil {
		return fmt.Errorf("save data update request: %w", err)
	}
	return nil
}

func (s *PostgresDataUpdateStore) Update(ctx context.Context, req DataUpdateRequest) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE data_update_requests SET processed = $2, approved = $3 WHERE id = $1`,
		uuid.UUID(req.ID), req.Processed, req.Approved)
	if err != nil {
		return fmt.Errorf("update data update request: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresDataUpdateStore) FindByID(ctx context.Context, reqID id.RequestID) (DataUpdateRequest, error) {
	query := `SELECT ` + dataUpdateColumns + ` FROM data_update_requests WHERE id = $1`
	if s.rowLock {
		query += ` FOR UPDATE`
	}
	return scanDataUpdateRequest(s.q.QueryRowContext(ctx, query, uuid.UUID(reqID)))
}

func (s *PostgresDataUpdateStore) ListPending(ctx context.Context) ([]DataUpdateRequest, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+dataUpdateColumns+` FROM data_update_requests WHERE NOT processed ORDER BY request_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list data update requests: %w", err)
	}
	defer rows.Close()

	var reqs []DataUpdateRequest
	for rows.Next() {
		req, err := scanDataUpdateRequestRow(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (s *PostgresDataUpdateStore) DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM data_update_requests WHERE citizen_id = $1`, uuid.UUID(citizenID)); err != nil {
		return fmt.Errorf("delete data update requests: %w", err)
	}
	return nil
}

func scanDataUpdateRequest(row *sql.Row) (DataUpdateRequest, error) {
	return scanDataUpdateRequestRow(row)
}

func scanDataUpdateRequestRow(row rowScanner) (DataUpdateRequest, error) {
	var req DataUpdateRequest
	var reqID, citizenID uuid.UUID
	var gender sql.NullString
	err := row.Scan(&reqID, &citizenID, &req.RequestedFirstName, &req.RequestedLastName,
		&gender, &req.Processed, &req.Approved, &req.RequestDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DataUpdateRequest{}, sentinel.ErrNotFound
		}
		return DataUpdateRequest{}, fmt.Errorf("scan data update request: %w", err)
	}
	req.ID = id.RequestID(reqID)
	req.CitizenID = id.CitizenID(citizenID)
	if gender.Valid {
		g := identity.Gender(gender.String)
		req.RequestedGender = &g
	}
	return req, nil
}

func nullGender(gender *identity.Gender) sql.NullString {
	if gender == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*gender), Valid: true}
}

func joinCategories(categories []document.LicenseCategory) string {
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func splitCategories(joined string) []document.LicenseCategory {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	categories := make([]document.LicenseCategory, len(parts))
	for i, p := range parts {
		categories[i] = document.LicenseCategory(p)
	}
	return categories
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
