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

type BookingHandler struct {
	bookings  service.BookingService
	purchases service.PurchaseService
}

func NewBookingHandler(bookings service.BookingService, purchases service.PurchaseService) *BookingHandler {
	return &BookingHandler{bookings: bookings, purchases: purchases}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	router := r.Group("/api/v1", requireAuth)
	{
		router.POST("events/:id/bookings", h.BookWithPoints)
		router.POST("events/:id/bookings/full-price", h.BookFullPrice)
		router.GET("bookings", h.ListBookings)
		router.DELETE("bookings/:id", h.CancelBooking)
		router.POST("bookings/:id/purchase", h.PurchaseBooking)
		router.GET("purchases/:id", h.GetPurchase)
	}
}

func (h *BookingHandler) BookWithPoints(c *gin.Context) {
	h.book(c, true)
}

func (h *BookingHandler) BookFullPrice(c *gin.Context) {
	h.book(c, false)
}

func (h *BookingHandler) book(c *gin.Context, applyPoints bool) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	eventID, ok := IDParam(c)
	if !ok {
		return
	}

	var result *model.BookingResult
	err := withTxRetry(func() error {
		var bookErr error
		result, bookErr = h.bookings.Book(c, principal.UserID, eventID, applyPoints)
		return bookErr
	})
	if err != nil {
		h.handleBookingError(c, err, "Book")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	bookings, err := h.bookings.ListByUser(c, principal.UserID)
	if err != nil {
		h.handleBookingError(c, err, "ListBookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	bookingID, ok := IDParam(c)
	if !ok {
		return
	}

	var result *model.CancelResult
	err := withTxRetry(func() error {
		var cancelErr error
		result, cancelErr = h.bookings.Cancel(c, principal.UserID, bookingID)
		return cancelErr
	})
	if err != nil {
		h.handleBookingError(c, err, "CancelBooking")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) PurchaseBooking(c *gin.Context) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	bookingID, ok := IDParam(c)
	if !ok {
		return
	}

	var result *model.PurchaseResult
	err := withTxRetry(func() error {
		var purchaseErr error
		result, purchaseErr = h.purchases.Purchase(c, principal.UserID, bookingID)
		return purchaseErr
	})
	if err != nil {
		h.handleBookingError(c, err, "PurchaseBooking")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) GetPurchase(c *gin.Context) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	paymentID, ok := IDParam(c)
	if !ok {
		return
	}

	payment, err := h.purchases.GetPurchase(c, paymentID)
	if err != nil {
		h.handleBookingError(c, err, "GetPurchase")
		return
	}
	// A payment belonging to someone else reads as missing.
	if payment.Booking == nil || !principal.IsUser(payment.Booking.UserID) {
		h.handleBookingError(c, apperrors.ErrPaymentNotFound, "GetPurchase")
		return
	}

	c.JSON(http.StatusOK, payment)
}

// withTxRetry reruns the operation once when the store reports a
// serialization conflict. A second conflict surfaces to the caller.
func withTxRetry(op func() error) error {
	err := op()
	if errors.Is(err, apperrors.ErrTxConflict) {
		err = op()
	}
	return err
}

func (h *BookingHandler) handleBookingError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNoTicketsAvailable):
		log.Warn("No tickets available")
		c.JSON(http.StatusConflict, gin.H{
			"error": "No tickets available",
		})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
	case errors.Is(err, apperrors.ErrBookingNotFound):
		log.Warn("Booking not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, apperrors.ErrBookingNotOwned):
		// Same response as a missing booking so foreign ids reveal nothing.
		log.Warn("Booking not owned by caller")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, apperrors.ErrBookingAlreadyPaid):
		log.Warn("Booking already paid")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Booking already paid",
		})
	case errors.Is(err, apperrors.ErrPaymentNotFound):
		log.Warn("Payment not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Payment not found",
		})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
	case errors.Is(err, apperrors.ErrTxConflict):
		log.Warn("Transaction conflict after retry")
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
