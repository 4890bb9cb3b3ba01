package workflow

import (
	"context"
	"database/sql"
	"time"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/pkg/apperrors"
)

const defaultTxTimeout = 5 * time.Second

// PostgresTx runs a processing step inside one database transaction. The
// transaction-scoped request store locks the request row, which serializes
// concurrent process calls for the same request.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(stores TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stores := TxStores{
		IssueRequests: NewPostgresIssueRequestStoreTx(tx),
		DataUpdates:   NewPostgresDataUpdateStoreTx(tx),
		Documents:     document.NewPostgresStoreTx(tx),
		Citizens:      identity.NewPostgresCitizenStoreTx(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}

	return tx.Commit()
}
