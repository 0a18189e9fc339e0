package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/shopizi/internal/config"
	"github.com/GTDGit/shopizi/internal/metrics"
	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/utils"
	"github.com/GTDGit/shopizi/pkg/izipay"
	"github.com/GTDGit/shopizi/pkg/outbound"
	"github.com/GTDGit/shopizi/pkg/shopify"
)

const (
	defaultSimpleTimeout = 10 * time.Second
	defaultFullTimeout   = 30 * time.Second

	previewLength = 200
	previewSuffix = "..."
)

// HTTPClient issues the outbound requests of a probe.
type HTTPClient interface {
	Get(ctx context.Context, url string, header http.Header, timeout time.Duration) (*outbound.Response, error)
	Post(ctx context.Context, url string, header http.Header, body []byte, timeout time.Duration) (*outbound.Response, error)
}

// ProbeService runs connectivity probes against the provider of a stored
// configuration. Configurations are reloaded from the store on every probe.
type ProbeService struct {
	izipayConfigs  *IzipayConfigService
	shopifyConfigs *ShopifyConfigService
	client         HTTPClient
	metrics        *metrics.Metrics

	simpleTimeout time.Duration
	fullTimeout   time.Duration
	now           func() time.Time
}

// NewProbeService creates a new ProbeService.
func NewProbeService(
	izipayConfigs *IzipayConfigService,
	shopifyConfigs *ShopifyConfigService,
	client HTTPClient,
	cfg config.ProbeConfig,
	m *metrics.Metrics,
) *ProbeService {
	s := &ProbeService{
		izipayConfigs:  izipayConfigs,
		shopifyConfigs: shopifyConfigs,
		client:         client,
		metrics:        m,
		simpleTimeout:  cfg.SimpleTimeout,
		fullTimeout:    cfg.FullTimeout,
		now:            time.Now,
	}
	if s.simpleTimeout <= 0 {
		s.simpleTimeout = defaultSimpleTimeout
	}
	if s.fullTimeout <= 0 {
		s.fullTimeout = defaultFullTimeout
	}
	return s
}

// Run resolves the configuration named by req (or the active one) and probes
// it. Failed probes are results, not errors; errors are limited to
// utils.ErrConfigNotFound, utils.ErrNoActiveConfig,
// utils.ErrUnsupportedTestType and unexpected failures.
func (s *ProbeService) Run(ctx context.Context, provider models.Provider, req models.ProbeRequest) (*models.ProbeResult, error) {
	testType := req.TestType
	if testType == "" {
		testType = models.TestTypeSimple
	}

	switch provider {
	case models.ProviderIzipay:
		c, err := s.resolveIzipay(ctx, req.ConfigID)
		if err != nil {
			return nil, err
		}
		return s.ProbeIzipay(ctx, c, testType)
	case models.ProviderShopify:
		if testType != models.TestTypeSimple {
			return nil, utils.ErrUnsupportedTestType
		}
		c, err := s.resolveShopify(ctx, req.ConfigID)
		if err != nil {
			return nil, err
		}
		return s.ProbeShopify(ctx, c), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func (s *ProbeService) resolveIzipay(ctx context.Context, id *int) (*models.IzipayConfig, error) {
	if id != nil {
		return s.izipayConfigs.Get(ctx, *id)
	}
	return s.izipayConfigs.GetActive(ctx)
}

func (s *ProbeService) resolveShopify(ctx context.Context, id *int) (*models.ShopifyConfig, error) {
	if id != nil {
		return s.shopifyConfigs.Get(ctx, *id)
	}
	return s.shopifyConfigs.GetActive(ctx)
}

// ProbeIzipay runs a simple (script reachability) or full (signed charge)
// probe of c.
func (s *ProbeService) ProbeIzipay(ctx context.Context, c *models.IzipayConfig, testType models.TestType) (*models.ProbeResult, error) {
	start := time.Now()

	info := map[string]any{
		"id":            c.ID,
		"merchant_code": c.MerchantCode,
		"environment":   c.Environment(),
		"script_url":    c.ScriptURL,
	}

	var (
		result *models.ProbeResult
		err    error
	)
	switch testType {
	case models.TestTypeSimple:
		info["tested_url"] = c.ScriptURL
		resp, reqErr := s.client.Get(ctx, c.ScriptURL, nil, s.simpleTimeout)
		result = classify(resp, reqErr, c.ScriptURL, isOK, func(*outbound.Response) string {
			return "Conectividad básica exitosa con Izipay"
		})
	case models.TestTypeFull:
		apiURL := izipay.ChargeURL(c.IsSandbox)
		info["api_url"] = apiURL
		result, err = s.fullIzipayProbe(ctx, c, apiURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, utils.ErrUnsupportedTestType
	}

	result.TestType = testType
	result.ConfigInfo = info
	s.finish(result, models.ProviderIzipay, start)
	return result, nil
}

func (s *ProbeService) fullIzipayProbe(ctx context.Context, c *models.IzipayConfig, apiURL string) (*models.ProbeResult, error) {
	payload, err := utils.CanonicalJSON(izipay.NewProbeCharge(s.now()))
	if err != nil {
		return nil, fmt.Errorf("encode probe payload: %w", err)
	}
	headers := izipay.ChargeHeaders(
		utils.BasicAuth(c.MerchantCode, c.APIKey),
		utils.GenerateSignature(payload, c.HashKey),
	)

	resp, reqErr := s.client.Post(ctx, apiURL, headers, payload, s.fullTimeout)
	return classify(resp, reqErr, apiURL, is2xx, func(r *outbound.Response) string {
		return fmt.Sprintf("Respuesta recibida de Izipay (Status: %d)", r.StatusCode)
	}), nil
}

// ProbeShopify fetches shop.json of c with its credentials.
func (s *ProbeService) ProbeShopify(ctx context.Context, c *models.ShopifyConfig) *models.ProbeResult {
	start := time.Now()

	url := shopify.APIURL(c.ShopName, "shop.json")
	headers := shopify.Headers(shopify.Credentials{
		AccessToken: c.AccessToken,
		APIKey:      c.APIKey,
		APISecret:   c.APISecret,
	}, utils.BasicAuth)

	resp, reqErr := s.client.Get(ctx, url, headers, s.simpleTimeout)
	result := classify(resp, reqErr, url, isOK, func(r *outbound.Response) string {
		return "Connection successful! Connected to: " + shopify.ShopName(r.Body)
	})
	result.TestType = models.TestTypeSimple
	result.ConfigInfo = map[string]any{
		"id":         c.ID,
		"shop_name":  c.ShopName,
		"is_active":  c.IsActive,
		"tested_url": url,
	}
	s.finish(result, models.ProviderShopify, start)
	return result
}

func (s *ProbeService) finish(result *models.ProbeResult, provider models.Provider, start time.Time) {
	result.Timestamp = s.now().UTC()

	outcome := metrics.OutcomeFailure
	switch {
	case result.Success:
		outcome = metrics.OutcomeSuccess
	case result.AttemptedURL != "":
		outcome = metrics.OutcomeTransportError
	}
	elapsed := time.Since(start)
	s.metrics.ObserveProbe(string(provider), string(result.TestType), outcome, elapsed)

	event := log.Info()
	if !result.Success {
		event = log.Warn()
	}
	event.
		Str("provider", string(provider)).
		Str("test_type", string(result.TestType)).
		Str("outcome", outcome).
		Int("response_status", result.ResponseStatus).
		Str("error", result.Error).
		Dur("latency", elapsed).
		Msg("connectivity probe finished")
}

func isOK(status int) bool  { return status == http.StatusOK }
func is2xx(status int) bool { return status >= 200 && status < 300 }

// classify turns the outcome of one request into a result. Transport
// failures carry the error kind and the attempted URL. Any response carries
// its status and a preview of the decoded body, while a failure message
// quotes the whole body.
func classify(resp *outbound.Response, err error, url string, success func(int) bool, message func(*outbound.Response) string) *models.ProbeResult {
	if err != nil {
		var terr *outbound.TransportError
		if !errors.As(err, &terr) {
			terr = &outbound.TransportError{Kind: outbound.KindUnknown, Detail: err.Error()}
		}
		return &models.ProbeResult{
			Success:      false,
			Error:        terr.Error(),
			AttemptedURL: url,
		}
	}

	preview := Preview(resp.Text)
	result := &models.ProbeResult{
		ResponseStatus:  resp.StatusCode,
		ResponsePreview: &preview,
	}
	if success(resp.StatusCode) {
		result.Success = true
		result.Message = message(resp)
	} else {
		result.Message = fmt.Sprintf("Connection failed. Status code: %d, Response: %s", resp.StatusCode, resp.Text)
	}
	return result
}

// Preview returns the first 200 characters of text, followed by "..." when
// text is longer.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	n := 0
	for i := range text {
		if n == previewLength {
			return text[:i] + previewSuffix
		}
		n++
	}
	return text
}
