package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
)

// respondError maps the core failure taxonomy onto transport status codes.
// Anything outside the taxonomy is a store failure: logged, hidden from the
// client, retryable.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	message := "store error, please retry"

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrRestaurantNotFound),
		errors.Is(err, domain.ErrMealNotFound),
		errors.Is(err, domain.ErrEmptyCatalog):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrMealUnavailable),
		errors.Is(err, domain.ErrMealExpired),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInsufficientStock):
		status, message = http.StatusConflict, err.Error()
	default:
		s.logger.Error("store failure",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.JSON(status, gin.H{"ok": false, "error": message})
}
