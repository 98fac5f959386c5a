package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/mailer"
	"go.uber.org/zap"
)

func (h *httpHandler) handleContact(c *gin.Context) {
	var message mailer.ContactMessage
	if err := c.ShouldBindJSON(&message); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := message.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and message are required"})
		return
	}

	if h.mailer == nil {
		h.logger.Warn("contact submission dropped, mailer not configured",
			zap.String("from_email", message.Email))
		c.JSON(http.StatusOK, gin.H{"sent": true})
		return
	}

	// Mail dispatch is fire-and-forget: delivery failures are logged and the
	// submitter still sees success.
	go func(msg mailer.ContactMessage) {
		if err := h.mailer.SendContact(msg); err != nil && !errors.Is(err, mailer.ErrInvalidMessage) {
			h.logger.Error("contact mail dispatch failed",
				zap.String("from_email", msg.Email),
				zap.Error(err))
		}
	}(message)

	c.JSON(http.StatusOK, gin.H{"sent": true})
}
