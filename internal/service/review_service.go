package service

import (
	"context"

	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/repository"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type ReviewService interface {
	// Add creates a review for a payment the caller owns, on an event whose
	// type is Completed. One review per (payment, user).
	Add(ctx context.Context, userID int, req model.AddReviewRequest) (*model.Review, error)
	List(ctx context.Context, offset, limit int) ([]*model.Review, error)
}

type ReviewServiceImpl struct {
	tx       repository.TxManager
	payments repository.PaymentRepository
	reviews  repository.ReviewRepository
}

func NewReviewService(
	tx repository.TxManager,
	payments repository.PaymentRepository,
	reviews repository.ReviewRepository,
) ReviewService {
	return &ReviewServiceImpl{
		tx:       tx,
		payments: payments,
		reviews:  reviews,
	}
}

func (s *ReviewServiceImpl) Add(ctx context.Context, userID int, req model.AddReviewRequest) (*model.Review, error) {
	// Validation that needs no data happens before any transaction starts.
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ErrInvalidRating
	}

	var review *model.Review

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		payment, err := s.payments.FindByIDForReview(ctx, tx, req.PaymentID)
		if err != nil {
			return err
		}

		if payment.Booking.UserID != userID {
			return apperrors.ErrNotPaymentOwner
		}

		// Case-sensitive on purpose: the event type enum is written exactly
		// as stored.
		if payment.Booking.Event.EventType != model.EventTypeCompleted {
			return apperrors.ErrEventNotCompleted
		}

		exists, err := s.reviews.Exists(ctx, tx, req.PaymentID, userID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrReviewAlreadyExists
		}

		review = &model.Review{
			UserID:    userID,
			EventID:   payment.Booking.EventID,
			PaymentID: req.PaymentID,
			Review:    req.Review,
			Rating:    req.Rating,
		}
		review, err = s.reviews.Create(ctx, tx, review)
		return err
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *ReviewServiceImpl) List(ctx context.Context, offset, limit int) ([]*model.Review, error) {
	return s.reviews.List(ctx, offset, limit)
}
