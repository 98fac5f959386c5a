package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/pricing"
	"github.com/listingshield/backend/internal/tracking"
	"go.uber.org/zap"
)

type adminLoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *httpHandler) handleAdminLogin(c *gin.Context) {
	var request adminLoginPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Email == "" || request.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	if !h.guard.Authenticate(request.Email, request.Password) {
		// Generic message: never reveal which field failed.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.guard.SetSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (h *httpHandler) handleAdminCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": h.guard.IsAuthenticated(c)})
}

func (h *httpHandler) handleAdminLogout(c *gin.Context) {
	h.guard.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

func (h *httpHandler) handleVisitorList(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitors, total, err := h.visits.ListVisitors(c.Request.Context(), tracking.ListQuery{
		From:   dateRange.from,
		To:     dateRange.to,
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	})
	if err != nil {
		h.logger.Error("visitor listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"visitors": visitors, "total": total})
}

func (h *httpHandler) handlePricingList(c *gin.Context) {
	items, err := h.pricing.ActiveItems(c.Request.Context())
	if err != nil {
		h.logger.Error("pricing listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type pricingWritePayload struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (h *httpHandler) handlePricingWrite(c *gin.Context) {
	var request pricingWritePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	isActive := true
	if request.IsActive != nil {
		isActive = *request.IsActive
	}
	item := pricing.Item{
		Code:        request.Code,
		Name:        request.Name,
		Price:       request.Price,
		Type:        pricing.ItemType(request.Type),
		Description: request.Description,
		IsActive:    isActive,
	}
	if err := h.pricing.Upsert(c.Request.Context(), item); err != nil {
		if errors.Is(err, pricing.ErrInvalidItem) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code, name and a valid type are required"})
			return
		}
		h.logger.Error("pricing write failed", zap.String("code", request.Code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save pricing item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func intQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
