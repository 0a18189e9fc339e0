package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/service"
	"github.com/GTDGit/shopizi/internal/utils"
)

const (
	msgShopifyNoActive = "No active Shopify configuration found."
	msgShopifyNotFound = "Configuration not found."
)

// ShopifyConfigHandler handles Shopify configuration HTTP endpoints.
type ShopifyConfigHandler struct {
	configs *service.ShopifyConfigService
	probes  *service.ProbeService
}

// NewShopifyConfigHandler constructs a ShopifyConfigHandler.
func NewShopifyConfigHandler(configs *service.ShopifyConfigService, probes *service.ProbeService) *ShopifyConfigHandler {
	return &ShopifyConfigHandler{configs: configs, probes: probes}
}

// List handles GET /shopify/api/config/
func (h *ShopifyConfigHandler) List(c *gin.Context) {
	configs, err := h.configs.List(c.Request.Context())
	if err != nil {
		writeInternalError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, configs)
}

// Create handles POST /shopify/api/config/
func (h *ShopifyConfigHandler) Create(c *gin.Context) {
	var in models.ShopifyConfigInput
	if !bindJSON(c, &in) {
		return
	}
	cfg, err := h.configs.Create(c.Request.Context(), in)
	if err != nil {
		writeWriteError(c, err)
		return
	}
	utils.JSON(c, http.StatusCreated, cfg.Public())
}

// Retrieve handles GET /shopify/api/config/:id/
func (h *ShopifyConfigHandler) Retrieve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cfg, err := h.configs.Get(c.Request.Context(), id)
	if err != nil {
		writeWriteError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, cfg.Public())
}

// Update handles PUT /shopify/api/config/:id/
func (h *ShopifyConfigHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// PartialUpdate handles PATCH /shopify/api/config/:id/
func (h *ShopifyConfigHandler) PartialUpdate(c *gin.Context) {
	h.update(c, true)
}

func (h *ShopifyConfigHandler) update(c *gin.Context, partial bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in models.ShopifyConfigInput
	if !bindJSON(c, &in) {
		return
	}
	cfg, err := h.configs.Update(c.Request.Context(), id, in, partial)
	if err != nil {
		writeWriteError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, cfg.Public())
}

// Delete handles DELETE /shopify/api/config/:id/
func (h *ShopifyConfigHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.configs.Delete(c.Request.Context(), id); err != nil {
		writeWriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActiveConfig handles GET /shopify/api/config/active_config/
func (h *ShopifyConfigHandler) ActiveConfig(c *gin.Context) {
	cfg, err := h.configs.GetActive(c.Request.Context())
	if errors.Is(err, utils.ErrNoActiveConfig) {
		utils.Error(c, http.StatusNotFound, msgShopifyNoActive)
		return
	}
	if err != nil {
		writeInternalError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, cfg.Public())
}

// TestConnectivity handles POST /shopify/api/config/test_connectivity/
func (h *ShopifyConfigHandler) TestConnectivity(c *gin.Context) {
	req, ok := bindProbeRequest(c)
	if !ok {
		return
	}

	result, err := h.probes.Run(c.Request.Context(), models.ProviderShopify, req)
	switch {
	case err == nil:
		utils.JSON(c, http.StatusOK, result)
	case errors.Is(err, utils.ErrUnsupportedTestType):
		utils.Validation(c, utils.NewValidationError("test_type", `"full" is not supported for Shopify.`))
	case errors.Is(err, utils.ErrConfigNotFound):
		utils.Error(c, http.StatusNotFound, msgShopifyNotFound)
	case errors.Is(err, utils.ErrNoActiveConfig):
		utils.Error(c, http.StatusNotFound, msgShopifyNoActive)
	default:
		writeInternalError(c, err)
	}
}
