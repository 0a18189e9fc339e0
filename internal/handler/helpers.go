package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/utils"
)

const (
	msgNotFound       = "Not found."
	msgActiveConflict = "Solo puede haber una configuración activa a la vez."
)

// parseID reads the :id path parameter; non-numeric ids are not found.
func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the request body into dst.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.Validation(c, utils.BindingError(err))
		return false
	}
	return true
}

// bindProbeRequest decodes an optional probe body; an empty body selects
// the defaults.
func bindProbeRequest(c *gin.Context) (models.ProbeRequest, bool) {
	var req models.ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Validation(c, utils.BindingError(err))
		return req, false
	}
	if req.TestType == "" {
		req.TestType = models.TestTypeSimple
	}
	return req, true
}

// writeWriteError renders a failed create/update/delete.
func writeWriteError(c *gin.Context, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.Validation(c, verr)
	case errors.Is(err, utils.ErrActiveConflict):
		utils.Validation(c, utils.NewValidationError("non_field_errors", msgActiveConflict))
	case errors.Is(err, utils.ErrConfigNotFound):
		utils.Error(c, http.StatusNotFound, msgNotFound)
	default:
		writeInternalError(c, err)
	}
}

func writeInternalError(c *gin.Context, err error) {
	log.Error().Err(err).
		Str("request_id", utils.RequestID(c)).
		Str("path", c.FullPath()).
		Msg("request failed")
	utils.Error(c, http.StatusInternalServerError, fmt.Sprintf("Error inesperado: %v", err))
}
