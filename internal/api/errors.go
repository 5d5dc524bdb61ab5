package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medforo/medforo/internal/service"
)

// statusFor maps a business error kind to an HTTP status
func statusFor(err error) int {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	case service.KindInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes a business error as a JSON response. Unclassified
// errors are masked; their detail belongs in the log, not the response.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
