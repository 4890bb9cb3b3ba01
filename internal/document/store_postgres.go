package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists documents. Categories are stored as a comma-joined
// text column; the slice form is rebuilt on scan.
type PostgresStore struct {
	q querier
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{q: db}
}

// NewPostgresStoreTx binds the store to an open transaction for the
// workflow's issuance path.
func NewPostgresStoreTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{q: tx}
}

const documentColumns = `id, citizen_id, kind, photo_ref, issue_date, expiration_date, issued_by, lost, citizenship, categories`

func (s *PostgresStore) Save(ctx context.Context, doc Document) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(doc.ID), uuid.UUID(doc.CitizenID), string(doc.Kind), doc.PhotoRef,
		doc.IssueDate, doc.ExpirationDate, uuid.UUID(doc.IssuedBy), doc.Lost,
		doc.Citizenship, joinCategories(doc.Categories))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, doc Document) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE documents SET photo_ref = $2, issue_date = $3, expiration_date = $4,
		 issued_by = $5, lost = $6, citizenship = $7, categories = $8 WHERE id = $1`,
		uuid.UUID(doc.ID), doc.PhotoRef, doc.IssueDate, doc.ExpirationDate,
		uuid.UUID(doc.IssuedBy), doc.Lost, doc.Citizenship, joinCategories(doc.Categories))
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (Document, error) {
	return scanDocument(s.q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, uuid.UUID(docID)))
}

func (s *PostgresStore) FindByCitizenAndKind(ctx context.Context, citizenID id.CitizenID, kind Kind) (Document, error) {
	return scanDocument(s.q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE citizen_id = $1 AND kind = $2 FOR UPDATE`,
		uuid.UUID(citizenID), string(kind)))
}

func (s *PostgresStore) ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]Document, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE citizen_id = $1 ORDER BY kind, issue_date DESC`,
		uuid.UUID(citizenID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM documents WHERE citizen_id = $1`, uuid.UUID(citizenID)); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (Document, error) {
	return scanDocumentRow(row)
}

func scanDocumentRow(row rowScanner) (Document, error) {
	var doc Document
	var docID, citizenID, issuedBy uuid.UUID
	var kind, categories string
	err := row.Scan(&docID, &citizenID, &kind, &doc.PhotoRef, &doc.IssueDate,
		&doc.ExpirationDate, &issuedBy, &doc.Lost, &doc.Citizenship, &categories)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	doc.ID = id.DocumentID(docID)
	doc.CitizenID = id.CitizenID(citizenID)
	doc.IssuedBy = id.OfficialID(issuedBy)
	doc.Kind = Kind(kind)
	doc.Categories = splitCategories(categories)
	return doc, nil
}

func joinCategories(categories []LicenseCategory) string {
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func splitCategories(joined string) []LicenseCategory {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	categories := make([]LicenseCategory, len(parts))
	for i, p := range parts {
		categories[i] = LicenseCategory(p)
	}
	return categories
}
