package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayquote/internal/app/handlers/quotes"
	"stayquote/internal/app/middleware"
	domainpricing "stayquote/internal/domain/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError maps application errors onto HTTP statuses. Invalid requests
// are rejected quotes, not server faults.
func writeError(c *gin.Context, err error) {
	if kind, ok := domainpricing.KindOf(err); ok {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: string(kind)})
		return
	}
	switch {
	case errors.Is(err, quotes.ErrIdempotencyKeyTooLong):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, middleware.ErrIdempotencyConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, quotes.ErrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
