package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/shopizi/internal/models"
)

// ShopifyConfigRepository handles data access for Shopify store configurations.
type ShopifyConfigRepository struct {
	db *sqlx.DB
}

// NewShopifyConfigRepository creates a new ShopifyConfigRepository.
func NewShopifyConfigRepository(db *sqlx.DB) *ShopifyConfigRepository {
	return &ShopifyConfigRepository{db: db}
}

const shopifyColumns = `id, shop_name, api_key, api_secret, access_token, is_active, created_at, updated_at`

// List returns every configuration ordered by ID.
func (r *ShopifyConfigRepository) List(ctx context.Context) ([]models.ShopifyConfig, error) {
	q := `SELECT ` + shopifyColumns + ` FROM shopify_configs ORDER BY id`
	configs := []models.ShopifyConfig{}
	if err := r.db.SelectContext(ctx, &configs, q); err != nil {
		return nil, err
	}
	return configs, nil
}

// GetByID returns a configuration by ID. Returns sql.ErrNoRows when missing.
func (r *ShopifyConfigRepository) GetByID(ctx context.Context, id int) (*models.ShopifyConfig, error) {
	q := r.db.Rebind(`SELECT ` + shopifyColumns + ` FROM shopify_configs WHERE id = ? LIMIT 1`)
	var c models.ShopifyConfig
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActive returns the active configuration. Returns sql.ErrNoRows when none.
func (r *ShopifyConfigRepository) GetActive(ctx context.Context) (*models.ShopifyConfig, error) {
	q := r.db.Rebind(`SELECT ` + shopifyColumns + ` FROM shopify_configs WHERE is_active = ? ORDER BY id LIMIT 1`)
	var c models.ShopifyConfig
	if err := r.db.GetContext(ctx, &c, q, true); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts c and sets its ID. A duplicate shop name yields
// utils.ErrDuplicateShopName.
func (r *ShopifyConfigRepository) Create(ctx context.Context, c *models.ShopifyConfig) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if c.IsActive {
			if err := lockTable(ctx, tx, "shopify_configs"); err != nil {
				return err
			}
			if err := deactivateOthers(ctx, tx, "shopify_configs", 0, c.UpdatedAt); err != nil {
				return err
			}
		}

		q := tx.Rebind(`
			INSERT INTO shopify_configs
				(shop_name, api_key, api_secret, access_token, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`)
		return tx.QueryRowxContext(ctx, q,
			c.ShopName,
			c.APIKey,
			c.APISecret,
			c.AccessToken,
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
func (r *ShopifyConfigRepository) Update(ctx context.Context, id int, mutate func(c *models.ShopifyConfig) error) (*models.ShopifyConfig, error) {
	c := &models.ShopifyConfig{}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockTable(ctx, tx, "shopify_configs"); err != nil {
			return err
		}
		sel := tx.Rebind(`SELECT ` + shopifyColumns + ` FROM shopify_configs WHERE id = ?`)
		if err := tx.GetContext(ctx, c, sel, id); err != nil {
			return err
		}
		if err := mutate(c); err != nil {
			return err
		}
		if c.IsActive {
			if err := deactivateOthers(ctx, tx, "shopify_configs", c.ID, c.UpdatedAt); err != nil {
				return err
			}
		}

		q := tx.Rebind(`
			UPDATE shopify_configs SET
				shop_name = ?,
				api_key = ?,
				api_secret = ?,
				access_token = ?,
				is_active = ?,
				updated_at = ?
			WHERE id = ?`)
		res, err := tx.ExecContext(ctx, q,
			c.ShopName,
			c.APIKey,
			c.APISecret,
			c.AccessToken,
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
func (r *ShopifyConfigRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM shopify_configs WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
