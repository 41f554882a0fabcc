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

type AdminHandler struct {
	admin service.AdminService
}

func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) RegisterRoutes(r *gin.Engine, requireAuth, requireAdmin gin.HandlerFunc) {
	router := r.Group("/api/v1/admin", requireAuth, requireAdmin)
	{
		router.POST("events", h.CreateEvent)
		router.PUT("events/:id", h.UpdateEvent)
		router.DELETE("events/:id", h.DeleteEvent)
		router.GET("purchases", h.ListPurchases)
		router.GET("statistics", h.GetStatistics)
	}
}

func (h *AdminHandler) CreateEvent(c *gin.Context) {
	var params model.CreateEventParams
	if err := BindJson(c, &params); err != nil {
		return
	}

	event, err := h.admin.CreateEvent(c, params)
	if err != nil {
		h.handleAdminError(c, err, "CreateEvent")
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *AdminHandler) UpdateEvent(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	var params model.UpdateEventParams
	if err := BindJson(c, &params); err != nil {
		return
	}

	event, err := h.admin.UpdateEvent(c, id, params)
	if err != nil {
		h.handleAdminError(c, err, "UpdateEvent")
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.admin.DeleteEvent(c, id); err != nil {
		h.handleAdminError(c, err, "DeleteEvent")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListPurchases(c *gin.Context) {
	payments, err := h.admin.ListPurchases(c)
	if err != nil {
		h.handleAdminError(c, err, "ListPurchases")
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *AdminHandler) GetStatistics(c *gin.Context) {
	stats, err := h.admin.Stats(c)
	if err != nil {
		h.handleAdminError(c, err, "GetStatistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event data",
		})
	case errors.Is(err, apperrors.ErrTxConflict):
		log.Warn("Transaction conflict")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Please try again",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
