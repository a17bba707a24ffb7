package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/logger"
	"github.com/leadrelay/leadrelay/internal/service"
)

// ConfigHandler handles the runtime retry configuration endpoints.
type ConfigHandler struct {
	settings *service.Settings
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(settings *service.Settings) *ConfigHandler {
	return &ConfigHandler{settings: settings}
}

type configUpdateRequest struct {
	CRMMaxRetries *int     `json:"crm_max_retries"`
	CRMRetryDelay *float64 `json:"crm_retry_delay"` // seconds
}

func renderPolicy(p service.RetryPolicy) gin.H {
	return gin.H{
		"crm_max_retries": p.MaxAttempts,
		"crm_retry_delay": p.Delay.Seconds(),
	}
}

// Get handles GET /api/v1/config.
func (h *ConfigHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, renderPolicy(h.settings.Policy()))
}

// Update handles POST /api/v1/config/update. Omitted fields keep their
// current values; the change only affects runs started after it lands.
func (h *ConfigHandler) Update(c *gin.Context) {
	var req configUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid config payload: " + err.Error(),
		})
		return
	}

	var delay *time.Duration
	if req.CRMRetryDelay != nil {
		d := time.Duration(*req.CRMRetryDelay * float64(time.Second))
		delay = &d
	}

	policy, err := h.settings.Update(req.CRMMaxRetries, delay)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.CtxInfo(c.Request.Context(), "Retry configuration updated: max_retries=%d, delay=%s",
		policy.MaxAttempts, policy.Delay)
	c.JSON(http.StatusOK, renderPolicy(policy))
}
