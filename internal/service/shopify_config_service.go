package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/repository"
	"github.com/GTDGit/shopizi/internal/utils"
	"github.com/GTDGit/shopizi/pkg/shopify"
)

const (
	msgDuplicateShopName = "shopify config with this shop name already exists."
	msgMissingCredential = "Provide access_token or both api_key and api_secret."
	msgInvalidShopName   = "Enter the store host name only, e.g. my-store.myshopify.com."
)

// ShopifyConfigService manages Shopify store credentials.
type ShopifyConfigService struct {
	repo *repository.ShopifyConfigRepository
	now  func() time.Time
}

// NewShopifyConfigService creates a new ShopifyConfigService.
func NewShopifyConfigService(repo *repository.ShopifyConfigRepository) *ShopifyConfigService {
	return &ShopifyConfigService{repo: repo, now: time.Now}
}

// List returns every configuration without secrets.
func (s *ShopifyConfigService) List(ctx context.Context) ([]models.ShopifyConfigPublic, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ShopifyConfigPublic, 0, len(configs))
	for i := range configs {
		out = append(out, configs[i].Public())
	}
	return out, nil
}

// Get returns a configuration by ID or utils.ErrConfigNotFound.
func (s *ShopifyConfigService) Get(ctx context.Context, id int) (*models.ShopifyConfig, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrConfigNotFound
	}
	return c, err
}

// GetActive returns the active configuration or utils.ErrNoActiveConfig.
func (s *ShopifyConfigService) GetActive(ctx context.Context) (*models.ShopifyConfig, error) {
	c, err := s.repo.GetActive(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrNoActiveConfig
	}
	return c, err
}

// Create validates in and stores a new configuration.
func (s *ShopifyConfigService) Create(ctx context.Context, in models.ShopifyConfigInput) (*models.ShopifyConfig, error) {
	verr := validateShopifyInput(in, true)

	now := s.now().UTC()
	c := &models.ShopifyConfig{CreatedAt: now, UpdatedAt: now}
	applyShopifyInput(c, in)
	requireCredentials(verr, c)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, shopifyWriteError(err)
	}
	log.Info().
		Int("config_id", c.ID).
		Str("shop_name", c.ShopName).
		Str("auth_method", c.AuthMethod()).
		Bool("is_active", c.IsActive).
		Msg("shopify config created")
	return c, nil
}

// Update applies in to configuration id, partially or in full. The stored
// row is read and written in one transaction, so fields absent from in keep
// their current values, including is_active.
func (s *ShopifyConfigService) Update(ctx context.Context, id int, in models.ShopifyConfigInput, partial bool) (*models.ShopifyConfig, error) {
	now := s.now().UTC()
	c, err := s.repo.Update(ctx, id, func(c *models.ShopifyConfig) error {
		verr := validateShopifyInput(in, !partial)
		applyShopifyInput(c, in)
		requireCredentials(verr, c)
		if err := verr.Err(); err != nil {
			return err
		}
		c.UpdatedAt = now
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrConfigNotFound
	}
	if err != nil {
		return nil, shopifyWriteError(err)
	}
	log.Info().
		Int("config_id", c.ID).
		Str("shop_name", c.ShopName).
		Bool("is_active", c.IsActive).
		Msg("shopify config updated")
	return c, nil
}

// Delete removes a configuration.
func (s *ShopifyConfigService) Delete(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrConfigNotFound
	}
	if err == nil {
		log.Info().Int("config_id", id).Msg("shopify config deleted")
	}
	return err
}

func validateShopifyInput(in models.ShopifyConfigInput, full bool) *utils.ValidationError {
	verr := &utils.ValidationError{}
	requireString(verr, "shop_name", in.ShopName, full)
	if in.ShopName != nil {
		if shop := strings.TrimSpace(*in.ShopName); shop != "" && !shopify.ValidShopName(shop) {
			verr.Add("shop_name", msgInvalidShopName)
		}
	}
	return verr
}

func requireCredentials(verr *utils.ValidationError, c *models.ShopifyConfig) {
	if c.AccessToken == "" && (c.APIKey == "" || c.APISecret == "") {
		verr.Add("non_field_errors", msgMissingCredential)
	}
}

func applyShopifyInput(c *models.ShopifyConfig, in models.ShopifyConfigInput) {
	setString(&c.ShopName, in.ShopName)
	setString(&c.APIKey, in.APIKey)
	setString(&c.APISecret, in.APISecret)
	setString(&c.AccessToken, in.AccessToken)
	setBool(&c.IsActive, in.IsActive)
}

func shopifyWriteError(err error) error {
	if errors.Is(err, utils.ErrDuplicateShopName) {
		return utils.NewValidationError("shop_name", msgDuplicateShopName)
	}
	return err
}
