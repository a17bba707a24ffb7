package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/api/middleware"
	"github.com/leadrelay/leadrelay/internal/repository"
)

// EventHandler handles event ledger endpoints.
type EventHandler struct {
	events *repository.EventRepository
}

// NewEventHandler creates a new event handler.
func NewEventHandler(events *repository.EventRepository) *EventHandler {
	return &EventHandler{events: events}
}

// List handles GET /api/v1/events.
func (h *EventHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	user := middleware.CurrentUser(c)

	events, err := h.events.ListByOwner(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list events: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, events)
}

// Get handles GET /api/v1/events/:id, where :id is the event's
// idempotency key.
func (h *EventHandler) Get(c *gin.Context) {
	key := c.Param("id")
	user := middleware.CurrentUser(c)

	event, err := h.events.GetByIdempotencyKey(c.Request.Context(), user.ID, key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
		return
	}

	c.JSON(http.StatusOK, event)
}
