package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/service"
	"github.com/GTDGit/shopizi/internal/utils"
)

const (
	msgIzipayNoActive      = "No hay configuración activa"
	msgIzipayProbeNoActive = "No hay configuración activa de Izipay"
)

// IzipayConfigHandler handles Izipay configuration HTTP endpoints.
type IzipayConfigHandler struct {
	configs *service.IzipayConfigService
	probes  *service.ProbeService
}

// NewIzipayConfigHandler constructs an IzipayConfigHandler.
func NewIzipayConfigHandler(configs *service.IzipayConfigService, probes *service.ProbeService) *IzipayConfigHandler {
	return &IzipayConfigHandler{configs: configs, probes: probes}
}

// List handles GET /izipay/api/config/
func (h *IzipayConfigHandler) List(c *gin.Context) {
	configs, err := h.configs.List(c.Request.Context())
	if err != nil {
		writeInternalError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, configs)
}

// Create handles POST /izipay/api/config/
func (h *IzipayConfigHandler) Create(c *gin.Context) {
	var in models.IzipayConfigInput
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

// Retrieve handles GET /izipay/api/config/:id/
func (h *IzipayConfigHandler) Retrieve(c *gin.Context) {
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

// Update handles PUT /izipay/api/config/:id/
func (h *IzipayConfigHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// PartialUpdate handles PATCH /izipay/api/config/:id/
func (h *IzipayConfigHandler) PartialUpdate(c *gin.Context) {
	h.update(c, true)
}

func (h *IzipayConfigHandler) update(c *gin.Context, partial bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in models.IzipayConfigInput
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

// Delete handles DELETE /izipay/api/config/:id/
func (h *IzipayConfigHandler) Delete(c *gin.Context) {
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

// ActiveConfig handles GET /izipay/api/config/active_config/
func (h *IzipayConfigHandler) ActiveConfig(c *gin.Context) {
	cfg, err := h.configs.GetActive(c.Request.Context())
	if errors.Is(err, utils.ErrNoActiveConfig) {
		utils.Error(c, http.StatusNotFound, msgIzipayNoActive)
		return
	}
	if err != nil {
		writeInternalError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, cfg.Public())
}

// ScriptInfo handles GET /izipay/api/config/script_info/
func (h *IzipayConfigHandler) ScriptInfo(c *gin.Context) {
	info, err := h.configs.ScriptInfo(c.Request.Context())
	if errors.Is(err, utils.ErrNoActiveConfig) {
		utils.Error(c, http.StatusNotFound, msgIzipayNoActive)
		return
	}
	if err != nil {
		writeInternalError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, info)
}

// CheckoutConfig handles GET /izipay/api/config/checkout_config/
func (h *IzipayConfigHandler) CheckoutConfig(c *gin.Context) {
	cfg, err := h.configs.CheckoutConfig(c.Request.Context())
	if errors.Is(err, utils.ErrNoActiveConfig) {
		utils.Error(c, http.StatusNotFound, msgIzipayNoActive)
		return
	}
	if err != nil {
		writeInternalError(c, err)
		return
	}
	utils.JSON(c, http.StatusOK, cfg)
}

// TestConnectivity handles POST /izipay/api/config/test_connectivity/
func (h *IzipayConfigHandler) TestConnectivity(c *gin.Context) {
	req, ok := bindProbeRequest(c)
	if !ok {
		return
	}

	result, err := h.probes.Run(c.Request.Context(), models.ProviderIzipay, req)
	switch {
	case err == nil:
		utils.JSON(c, http.StatusOK, result)
	case errors.Is(err, utils.ErrConfigNotFound):
		utils.Error(c, http.StatusNotFound, fmt.Sprintf("Configuración con ID %d no encontrada", *req.ConfigID))
	case errors.Is(err, utils.ErrNoActiveConfig):
		utils.Error(c, http.StatusNotFound, msgIzipayProbeNoActive)
	default:
		log.Error().Err(err).Str("request_id", utils.RequestID(c)).Msg("izipay probe failed")
		utils.JSON(c, http.StatusInternalServerError, models.ProbeResult{
			Success:   false,
			TestType:  req.TestType,
			Timestamp: time.Now().UTC(),
			Error:     fmt.Sprintf("Error inesperado: %v", err),
		})
	}
}
