package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/GTDGit/shopizi/internal/utils"
)

// withTx runs fn inside a transaction, committing on success.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// lockTable serializes writers that read or change the active flag of
// table. SQLite writers are already serialized by the database lock.
func lockTable(ctx context.Context, tx *sqlx.Tx, table string) error {
	if tx.DriverName() != "postgres" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "LOCK TABLE "+table+" IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	return nil
}

// deactivateOthers clears is_active on every row of table except exceptID.
// Callers hold the lock from lockTable.
func deactivateOthers(ctx context.Context, tx *sqlx.Tx, table string, exceptID int, now time.Time) error {
	q := tx.Rebind(`UPDATE ` + table + ` SET is_active = ?, updated_at = ? WHERE is_active = ? AND id <> ?`)
	if _, err := tx.ExecContext(ctx, q, false, now, true, exceptID); err != nil {
		return fmt.Errorf("deactivate %s: %w", table, err)
	}
	return nil
}

// mapWriteError converts unique violations into domain errors.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	if strings.Contains(constraint, "shop_name") {
		return utils.ErrDuplicateShopName
	}
	return utils.ErrActiveConflict
}

// uniqueViolation reports the violated constraint (or the driver message
// naming it) when err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" {
			return pqErr.Constraint, true
		}
		return "", false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")) {
			return liteErr.Error(), true
		}
	}
	return "", false
}
