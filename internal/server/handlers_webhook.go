package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/payments"
	"go.uber.org/zap"
)

func (h *httpHandler) handleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.webhook.Handle(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			// Forged or unsigned callbacks are rejected outright; no retry
			// guidance is offered.
			h.logger.Warn("webhook signature verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		h.logger.Error("webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
