package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/places"
	"go.uber.org/zap"
)

func (h *httpHandler) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	locations, err := h.places.Search(c.Request.Context(), query)
	if err != nil {
		h.respondPlacesError(c, err, "places search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": locations})
}

func (h *httpHandler) handleDetails(c *gin.Context) {
	placeID := strings.TrimSpace(c.Query("placeId"))
	if placeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "placeId parameter is required"})
		return
	}

	details, err := h.places.Details(c.Request.Context(), placeID)
	if err != nil {
		h.respondPlacesError(c, err, "places details failed")
		return
	}

	c.JSON(http.StatusOK, details)
}

// respondPlacesError maps gateway failures onto the error taxonomy: upstream
// throttling propagates 429 with the Retry-After value unchanged, no match is
// a 404 with an empty result list, anything else is a generic 500 whose
// detail stays in the server log.
func (h *httpHandler) respondPlacesError(c *gin.Context, err error, logMessage string) {
	var rateLimited *places.RateLimitError
	if errors.As(err, &rateLimited) {
		if rateLimited.RetryAfter != "" {
			c.Header("Retry-After", rateLimited.RetryAfter)
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		return
	}
	if errors.Is(err, places.ErrNoResults) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results found", "results": []places.Location{}})
		return
	}
	if errors.Is(err, places.ErrEmptyQuery) || errors.Is(err, places.ErrMissingPlaceID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error(logMessage, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Business lookup failed"})
}
