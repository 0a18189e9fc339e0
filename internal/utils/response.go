package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the payload of every non-validation error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes data as the response body.
func JSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// Error writes {"error": message}.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorBody{Error: message})
}

// Validation writes a 400 response with the per-field messages.
func Validation(c *gin.Context, err *ValidationError) {
	c.JSON(http.StatusBadRequest, err.Fields)
}

// RequestID returns the id assigned by the logging middleware, if any.
func RequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
