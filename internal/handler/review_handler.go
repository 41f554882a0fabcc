package handler

import (
	"errors"
	"net/http"

	"artexpo-ticketing/internal/auth"
	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/service"
	apperrors "artexpo-ticketing/pkg/app_errors"
	"artexpo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviews service.ReviewService
}

func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("reviews", h.ListReviews)
		router.POST("reviews", requireAuth, h.AddReview)
	}
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	offset, limit := Paging(c)

	reviews, err := h.reviews.List(c, offset, limit)
	if err != nil {
		h.handleReviewError(c, err, "ListReviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) AddReview(c *gin.Context) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req model.AddReviewRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	review, err := h.reviews.Add(c, principal.UserID, req)
	if err != nil {
		h.handleReviewError(c, err, "AddReview")
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) handleReviewError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidRating):
		log.Warn("Invalid rating")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Rating must be between 1 and 5",
		})
	case errors.Is(err, apperrors.ErrPaymentNotFound):
		log.Warn("Payment not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Payment not found",
		})
	case errors.Is(err, apperrors.ErrNotPaymentOwner):
		log.Warn("Payment not owned by caller")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not your payment",
		})
	case errors.Is(err, apperrors.ErrEventNotCompleted):
		log.Warn("Event not completed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Event is not completed yet",
		})
	case errors.Is(err, apperrors.ErrReviewAlreadyExists):
		log.Warn("Review already exists")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Review already exists for this payment",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
