package handler

import (
	"errors"
	"net/http"

	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/service"
	apperrors "artexpo-ticketing/pkg/app_errors"
	"artexpo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventHandler struct {
	catalog service.CatalogService
}

func NewEventHandler(catalog service.CatalogService) *EventHandler {
	return &EventHandler{catalog: catalog}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.ListEvents)
		router.GET("events/:id", h.GetEvent)
		router.GET("events/:id/availability", h.GetAvailability)
	}
}

// ListEvents serves both browsing and search. A search term or type filter
// switches the query to the search path.
func (h *EventHandler) ListEvents(c *gin.Context) {
	offset, limit := Paging(c)
	term := c.Query("search")
	typeParam := c.Query("type")

	if term == "" && typeParam == "" {
		events, err := h.catalog.List(c, offset, limit)
		if err != nil {
			h.handleEventError(c, err, "ListEvents")
			return
		}
		c.JSON(http.StatusOK, events)
		return
	}

	params := model.SearchEventsParams{Term: term, Offset: offset, Limit: limit}
	if typeParam != "" {
		eventType := model.EventType(typeParam)
		if !eventType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid event type",
			})
			return
		}
		params.Type = &eventType
	}

	events, err := h.catalog.Search(c, params)
	if err != nil {
		h.handleEventError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	event, err := h.catalog.Get(c, id)
	if err != nil {
		h.handleEventError(c, err, "GetEvent")
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetAvailability(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	snapshot, err := h.catalog.Availability(c, id)
	if err != nil {
		h.handleEventError(c, err, "GetAvailability")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *EventHandler) handleEventError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
