package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "mobywatel/pkg/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	var actorID any
	if entry.ActorID != nil {
		actorID = uuid.UUID(*entry.ActorID)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, actor_id, ts, description, method, path, status, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, actorID, entry.Timestamp, entry.Description,
		entry.Method, entry.Path, entry.Status, entry.UserAgent)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, actor_id, ts, description, method, path, status, user_agent
		 FROM audit_log ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var actorID uuid.NullUUID
		if err := rows.Scan(&entry.ID, &actorID, &entry.Timestamp, &entry.Description,
			&entry.Method, &entry.Path, &entry.Status, &entry.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if actorID.Valid {
			actor := id.UserID(actorID.UUID)
			entry.ActorID = &actor
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
