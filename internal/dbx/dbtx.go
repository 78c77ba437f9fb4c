// Package dbx provides tiny storage abstractions shared by repositories:
// a minimal database/sql interface (DBTX) and JSON record helpers over
// badger.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// StoreError classifies a driver error: sql.ErrNoRows becomes
// common.ErrNotFound, everything else common.ErrStoreUnavailable.
func StoreError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return fmt.Errorf("db error: %w: %w", common.ErrStoreUnavailable, err)
}

// ExpectOneRow checks that a write touched exactly one row; zero rows means
// the record does not exist.
func ExpectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w: %w", common.ErrStoreUnavailable, err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
