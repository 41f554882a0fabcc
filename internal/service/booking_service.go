package service

import (
	"context"
	"errors"

	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/pricing"
	"artexpo-ticketing/internal/queue"
	"artexpo-ticketing/internal/repository"
	apperrors "artexpo-ticketing/pkg/app_errors"
	"artexpo-ticketing/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingService interface {
	// Book claims one ticket as a draft booking. With applyPoints the user's
	// whole point balance is converted into a discount; without it the full
	// price is charged and points stay untouched.
	Book(ctx context.Context, userID, eventID int, applyPoints bool) (*model.BookingResult, error)
	// Cancel removes a draft booking owned by the caller, returns its tickets
	// to the event and credits back the points the booking appears to have
	// spent. A paid booking cannot be cancelled.
	Cancel(ctx context.Context, userID, bookingID int) (*model.CancelResult, error)
	ListByUser(ctx context.Context, userID int) ([]*model.Booking, error)
}

type BookingServiceImpl struct {
	tx       repository.TxManager
	events   repository.EventRepository
	users    repository.UserRepository
	bookings repository.BookingRepository
	feed     queue.TicketFeed
}

func NewBookingService(
	tx repository.TxManager,
	events repository.EventRepository,
	users repository.UserRepository,
	bookings repository.BookingRepository,
	feed queue.TicketFeed,
) BookingService {
	return &BookingServiceImpl{
		tx:       tx,
		events:   events,
		users:    users,
		bookings: bookings,
		feed:     feed,
	}
}

func (s *BookingServiceImpl) Book(ctx context.Context, userID, eventID int, applyPoints bool) (*model.BookingResult, error) {
	var result *model.BookingResult

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		// Lock the event row first: ticket_available is the contended field
		// and the lock serializes competing bookings.
		event, err := s.events.FindByIDWithLock(ctx, tx, eventID)
		if err != nil {
			return err
		}

		if event.TicketAvailable < 1 {
			return apperrors.ErrNoTicketsAvailable
		}

		user, err := s.users.FindByIDWithLock(ctx, tx, userID)
		if err != nil {
			return err
		}

		quote := pricing.Quote{DiscountedPrice: event.Price}
		if applyPoints {
			quote = pricing.ComputeDiscount(event.Price, user.Points)
		}

		if err := s.events.DecrementTickets(ctx, tx, event.ID, 1); err != nil {
			return err
		}
		if err := s.events.SetDiscountedPrice(ctx, tx, event.ID, quote.DiscountedPrice); err != nil {
			return err
		}

		booking := &model.Booking{
			UserID:   userID,
			EventID:  eventID,
			Quantity: 1,
			Status:   model.BookingStatusDraft,
			Amount:   quote.DiscountedPrice,
		}
		booking, err = s.bookings.Create(ctx, tx, booking)
		if err != nil {
			return err
		}

		// Overwrite, not decrement: RemainingPoints was derived from the
		// balance read under the same lock, so nothing can be lost.
		if applyPoints && user.Points > 0 {
			if err := s.users.SetPoints(ctx, tx, userID, quote.RemainingPoints); err != nil {
				return err
			}
		}

		result = &model.BookingResult{
			Booking:          booking,
			EventPrice:       event.Price,
			DiscountedPrice:  quote.DiscountedPrice,
			PointsInCurrency: quote.PointsInCurrency,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, eventID)
	return result, nil
}

func (s *BookingServiceImpl) Cancel(ctx context.Context, userID, bookingID int) (*model.CancelResult, error) {
	var result *model.CancelResult
	var eventID int

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		booking, err := s.bookings.FindByIDWithLock(ctx, tx, bookingID)
		if err != nil {
			// A missing booking and a foreign booking look the same to the
			// caller.
			if errors.Is(err, apperrors.ErrBookingNotFound) {
				return apperrors.ErrBookingNotOwned
			}
			return err
		}
		if booking.UserID != userID {
			return apperrors.ErrBookingNotOwned
		}
		if booking.Status != model.BookingStatusDraft {
			return apperrors.ErrBookingAlreadyPaid
		}
		eventID = booking.EventID

		event, err := s.events.FindByIDWithLock(ctx, tx, booking.EventID)
		if err != nil {
			return err
		}
		user, err := s.users.FindByIDWithLock(ctx, tx, booking.UserID)
		if err != nil {
			return err
		}

		// Heuristic carried over from the original system: the gap between
		// full price and charged amount is assumed to be points, and it is
		// only credited back when the user still holds a positive balance.
		pointsUsed := pricing.PointsUsedFor(event.Price, booking.Amount)
		pointsToRestore := 0.0
		if user.Points > 0 && pointsUsed > 0 {
			pointsToRestore = pointsUsed
		}

		if err := s.events.IncrementTickets(ctx, tx, event.ID, booking.Quantity); err != nil {
			return err
		}
		if pointsToRestore > 0 {
			if err := s.users.IncrementPoints(ctx, tx, user.ID, pointsToRestore); err != nil {
				return err
			}
		}
		if err := s.bookings.Delete(ctx, tx, booking.ID); err != nil {
			return err
		}

		result = &model.CancelResult{PointsRestored: pointsToRestore}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, eventID)
	return result, nil
}

func (s *BookingServiceImpl) ListByUser(ctx context.Context, userID int) ([]*model.Booking, error) {
	return s.bookings.ListByUserID(ctx, userID)
}

// publishChange runs after commit; a full feed must not fail the booking.
func (s *BookingServiceImpl) publishChange(ctx context.Context, eventID int) {
	if err := s.feed.Publish(ctx, queue.TicketChange{EventID: eventID}); err != nil {
		logger.WithComponent("booking_service").Warn("failed to publish ticket change",
			zap.Int("event_id", eventID), zap.Error(err))
	}
}
