package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/api/middleware"
	"github.com/leadrelay/leadrelay/internal/logger"
	"github.com/leadrelay/leadrelay/internal/repository"
	"github.com/leadrelay/leadrelay/internal/service"
)

// LeadHandler handles lead listing, detail, and manual re-delivery.
type LeadHandler struct {
	leads          *repository.LeadRepository
	webhookService *service.WebhookService
}

// NewLeadHandler creates a new lead handler.
// Parameters:
//   - leads: lead repository.
//   - webhookService: pipeline service used for manual re-delivery.
//
// Returns:
//   - *LeadHandler: initialized handler.
func NewLeadHandler(leads *repository.LeadRepository, webhookService *service.WebhookService) *LeadHandler {
	return &LeadHandler{
		leads:          leads,
		webhookService: webhookService,
	}
}

// List handles GET /api/v1/leads.
func (h *LeadHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	user := middleware.CurrentUser(c)

	leads, err := h.leads.ListByOwner(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list leads: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, leads)
}

// Get handles GET /api/v1/leads/:id. The response includes the lead's
// CRM attempt history.
func (h *LeadHandler) Get(c *gin.Context) {
	id := c.Param("id")
	user := middleware.CurrentUser(c)

	lead, err := h.leads.GetByIDForOwner(c.Request.Context(), user.ID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Lead not found",
		})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// RetryCRM handles POST /api/v1/leads/:id/retry-crm. It resumes CRM delivery
// for a lead whose earlier attempts failed.
func (h *LeadHandler) RetryCRM(c *gin.Context) {
	id := c.Param("id")
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	lead, outcome, err := h.webhookService.RetryDelivery(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lead not found",
			})
			return
		}
		logger.CtxError(ctx, "Manual CRM retry failed: lead_id=%s, error=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retry CRM delivery",
		})
		return
	}

	if outcome != service.OutcomeDelivered {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save to CRM after retry",
		})
		return
	}

	c.JSON(http.StatusOK, lead)
}
