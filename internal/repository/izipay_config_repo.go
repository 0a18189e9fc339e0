package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/shopizi/internal/models"
)

// IzipayConfigRepository handles data access for Izipay configurations.
type IzipayConfigRepository struct {
	db *sqlx.DB
}

// NewIzipayConfigRepository creates a new IzipayConfigRepository.
func NewIzipayConfigRepository(db *sqlx.DB) *IzipayConfigRepository {
	return &IzipayConfigRepository{db: db}
}

const izipayColumns = `id, merchant_code, api_key, hash_key, public_key, script_url, is_sandbox, is_active, created_at, updated_at`

// List returns every configuration, newest first.
func (r *IzipayConfigRepository) List(ctx context.Context) ([]models.IzipayConfig, error) {
	q := `SELECT ` + izipayColumns + ` FROM izipay_configs ORDER BY created_at DESC, id DESC`
	configs := []models.IzipayConfig{}
	if err := r.db.SelectContext(ctx, &configs, q); err != nil {
		return nil, err
	}
	return configs, nil
}

// GetByID returns a configuration by ID. Returns sql.ErrNoRows when missing.
func (r *IzipayConfigRepository) GetByID(ctx context.Context, id int) (*models.IzipayConfig, error) {
	q := r.db.Rebind(`SELECT ` + izipayColumns + ` FROM izipay_configs WHERE id = ? LIMIT 1`)
	var c models.IzipayConfig
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActive returns the active configuration. Returns sql.ErrNoRows when none.
func (r *IzipayConfigRepository) GetActive(ctx context.Context) (*models.IzipayConfig, error) {
	q := r.db.Rebind(`SELECT ` + izipayColumns + ` FROM izipay_configs WHERE is_active = ? ORDER BY id LIMIT 1`)
	var c models.IzipayConfig
	if err := r.db.GetContext(ctx, &c, q, true); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts c and sets its ID. An active c deactivates every other row
// in the same transaction.
func (r *IzipayConfigRepository) Create(ctx context.Context, c *models.IzipayConfig) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if c.IsActive {
			if err := lockTable(ctx, tx, "izipay_configs"); err != nil {
				return err
			}
			if err := deactivateOthers(ctx, tx, "izipay_configs", 0, c.UpdatedAt); err != nil {
				return err
			}
		}

		q := tx.Rebind(`
			INSERT INTO izipay_configs
				(merchant_code, api_key, hash_key, public_key, script_url, is_sandbox, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`)
		return tx.QueryRowxContext(ctx, q,
			c.MerchantCode,
			c.APIKey,
			c.HashKey,
			c.PublicKey,
			c.ScriptURL,
			c.IsSandbox,
			c.IsActive,
			c.CreatedAt,
			c.UpdatedAt,
		).Scan(&c.ID)
	})
	return mapWriteError(err)
}

// Update reads row id, applies mutate and writes every mutable column back,
// all in one transaction. mutate sees activations committed by other writers,
// so the row only takes the active flag when mutate sets it. Returns
// sql.ErrNoRows when the row does not exist; errors from mutate are returned
// unchanged.
func (r *IzipayConfigRepository) Update(ctx context.Context, id int, mutate func(c *models.IzipayConfig) error) (*models.IzipayConfig, error) {
	c := &models.IzipayConfig{}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockTable(ctx, tx, "izipay_configs"); err != nil {
			return err
		}
		sel := tx.Rebind(`SELECT ` + izipayColumns + ` FROM izipay_configs WHERE id = ?`)
		if err := tx.GetContext(ctx, c, sel, id); err != nil {
			return err
		}
		if err := mutate(c); err != nil {
			return err
		}
		if c.IsActive {
			if err := deactivateOthers(ctx, tx, "izipay_configs", c.ID, c.UpdatedAt); err != nil {
				return err
			}
		}

		q := tx.Rebind(`
			UPDATE izipay_configs SET
				merchant_code = ?,
				api_key = ?,
				hash_key = ?,
				public_key = ?,
				script_url = ?,
				is_sandbox = ?,
				is_active = ?,
				updated_at = ?
			WHERE id = ?`)
		res, err := tx.ExecContext(ctx, q,
			c.MerchantCode,
			c.APIKey,
			c.HashKey,
			c.PublicKey,
			c.ScriptURL,
			c.IsSandbox,
			c.IsActive,
			c.UpdatedAt,
			c.ID,
		)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return c, nil
}

// Delete removes a configuration. Returns sql.ErrNoRows when missing.
func (r *IzipayConfigRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM izipay_configs WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
