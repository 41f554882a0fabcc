package service

import (
	"context"

	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/repository"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type PurchaseService interface {
	// Purchase records the single payment for a draft booking owned by the
	// caller and marks the booking completed.
	Purchase(ctx context.Context, userID, bookingID int) (*model.PurchaseResult, error)
	GetPurchase(ctx context.Context, paymentID int) (*model.Payment, error)
}

type PurchaseServiceImpl struct {
	tx       repository.TxManager
	bookings repository.BookingRepository
	payments repository.PaymentRepository
}

func NewPurchaseService(
	tx repository.TxManager,
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
) PurchaseService {
	return &PurchaseServiceImpl{
		tx:       tx,
		bookings: bookings,
		payments: payments,
	}
}

func (s *PurchaseServiceImpl) Purchase(ctx context.Context, userID, bookingID int) (*model.PurchaseResult, error) {
	var result *model.PurchaseResult

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		booking, err := s.bookings.FindByIDWithLock(ctx, tx, bookingID)
		if err != nil {
			if err == apperrors.ErrBookingNotFound {
				return apperrors.ErrBookingNotOwned
			}
			return err
		}
		// Missing booking and foreign booking are deliberately the same
		// failure.
		if booking.UserID != userID {
			return apperrors.ErrBookingNotOwned
		}
		if !booking.Status.CanTransitionTo(model.BookingStatusCompleted) {
			return apperrors.ErrBookingAlreadyPaid
		}

		payment := &model.Payment{
			BookingID:     booking.ID,
			TotalAmount:   booking.Amount,
			PaymentStatus: model.PaymentStatusCompleted,
		}
		payment, err = s.payments.Create(ctx, tx, payment)
		if err != nil {
			return err
		}

		if _, err := s.bookings.MarkCompleted(ctx, tx, booking.ID); err != nil {
			return err
		}

		result = &model.PurchaseResult{
			Payment:     payment,
			TotalAmount: payment.TotalAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PurchaseServiceImpl) GetPurchase(ctx context.Context, paymentID int) (*model.Payment, error) {
	return s.payments.FindByID(ctx, paymentID)
}
