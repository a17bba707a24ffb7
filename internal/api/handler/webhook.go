package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/api/middleware"
	"github.com/leadrelay/leadrelay/internal/logger"
	"github.com/leadrelay/leadrelay/internal/service"
)

// WebhookHandler handles inbound lead messages.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler creates a new webhook handler.
// Parameters:
//   - webhookService: ingestion pipeline service.
//
// Returns:
//   - *WebhookHandler: initialized handler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

type webhookRequest struct {
	Message string `json:"message" binding:"required"`
}

// Receive handles POST /api/v1/webhook. The message runs through the full
// pipeline synchronously; a lead that was stored but not delivered to the
// CRM still produces a 200.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid webhook payload: " + err.Error(),
		})
		return
	}

	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	info, err := h.webhookService.ProcessMessage(ctx, user.ID, req.Message)
	if err != nil {
		var extractionErr *service.ExtractionError
		if errors.As(err, &extractionErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": extractionErr.Error(),
			})
			return
		}
		logger.CtxError(ctx, "Webhook processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process webhook: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, info)
}
