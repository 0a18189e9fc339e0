package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/repository"
	"github.com/GTDGit/shopizi/internal/utils"
	"github.com/GTDGit/shopizi/pkg/izipay"
)

// IzipayConfigService manages Izipay credentials.
type IzipayConfigService struct {
	repo *repository.IzipayConfigRepository
	now  func() time.Time
}

// NewIzipayConfigService creates a new IzipayConfigService.
func NewIzipayConfigService(repo *repository.IzipayConfigRepository) *IzipayConfigService {
	return &IzipayConfigService{repo: repo, now: time.Now}
}

// List returns every configuration without secrets, newest first.
func (s *IzipayConfigService) List(ctx context.Context) ([]models.IzipayConfigPublic, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.IzipayConfigPublic, 0, len(configs))
	for i := range configs {
		out = append(out, configs[i].Public())
	}
	return out, nil
}

// Get returns a configuration by ID or utils.ErrConfigNotFound.
func (s *IzipayConfigService) Get(ctx context.Context, id int) (*models.IzipayConfig, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrConfigNotFound
	}
	return c, err
}

// GetActive returns the active configuration or utils.ErrNoActiveConfig.
func (s *IzipayConfigService) GetActive(ctx context.Context) (*models.IzipayConfig, error) {
	c, err := s.repo.GetActive(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrNoActiveConfig
	}
	return c, err
}

// Create validates in and stores a new configuration. Activating it
// deactivates the previous active configuration.
func (s *IzipayConfigService) Create(ctx context.Context, in models.IzipayConfigInput) (*models.IzipayConfig, error) {
	if err := validateIzipayInput(in, true); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &models.IzipayConfig{
		IsSandbox: true,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyIzipayInput(c, in)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().
		Int("config_id", c.ID).
		Str("merchant_code", c.MerchantCode).
		Bool("is_active", c.IsActive).
		Str("environment", c.Environment()).
		Msg("izipay config created")
	return c, nil
}

// Update applies in to configuration id. A partial update only touches the
// fields present in in; a full update requires every required field. The
// stored row is read and written in one transaction, so fields absent from
// in keep their current values, including is_active.
func (s *IzipayConfigService) Update(ctx context.Context, id int, in models.IzipayConfigInput, partial bool) (*models.IzipayConfig, error) {
	now := s.now().UTC()
	c, err := s.repo.Update(ctx, id, func(c *models.IzipayConfig) error {
		if err := validateIzipayInput(in, !partial); err != nil {
			return err
		}
		applyIzipayInput(c, in)
		c.UpdatedAt = now
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("config_id", c.ID).
		Bool("is_active", c.IsActive).
		Str("environment", c.Environment()).
		Msg("izipay config updated")
	return c, nil
}

// Delete removes a configuration.
func (s *IzipayConfigService) Delete(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrConfigNotFound
	}
	if err == nil {
		log.Info().Int("config_id", id).Msg("izipay config deleted")
	}
	return err
}

// ScriptInfo describes how to embed the checkout script of the active configuration.
func (s *IzipayConfigService) ScriptInfo(ctx context.Context) (*models.IzipayScriptInfo, error) {
	c, err := s.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return &models.IzipayScriptInfo{
		ScriptTag:    izipay.ScriptTag(c.ScriptURL),
		ScriptURL:    c.ScriptURL,
		Environment:  c.Environment(),
		MerchantCode: c.MerchantCode,
	}, nil
}

// CheckoutConfig returns the widget bootstrap values of the active configuration.
func (s *IzipayConfigService) CheckoutConfig(ctx context.Context) (*models.IzipayCheckoutConfig, error) {
	c, err := s.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return &models.IzipayCheckoutConfig{
		MerchantCode: c.MerchantCode,
		IsSandbox:    c.IsSandbox,
		ScriptURL:    c.ScriptURL,
		KeyRSA:       c.PublicKey,
	}, nil
}

func validateIzipayInput(in models.IzipayConfigInput, full bool) error {
	verr := &utils.ValidationError{}
	requireString(verr, "merchant_code", in.MerchantCode, full)
	requireString(verr, "api_key", in.APIKey, full)
	requireString(verr, "hash_key", in.HashKey, full)
	requireString(verr, "public_key", in.PublicKey, full)
	return verr.Err()
}

// applyIzipayInput copies the present fields of in onto c and re-derives the
// script URL from the environment. A caller-supplied script_url is ignored.
func applyIzipayInput(c *models.IzipayConfig, in models.IzipayConfigInput) {
	setString(&c.MerchantCode, in.MerchantCode)
	setString(&c.APIKey, in.APIKey)
	setString(&c.HashKey, in.HashKey)
	setString(&c.PublicKey, in.PublicKey)
	setBool(&c.IsSandbox, in.IsSandbox)
	setBool(&c.IsActive, in.IsActive)
	c.ScriptURL = izipay.ScriptURL(c.IsSandbox)
}
