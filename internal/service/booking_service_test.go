package service_test

import (
	"context"
	"sync"
	"testing"

	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/queue"
	"artexpo-ticketing/internal/service"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(ledger *fakeLedger) service.BookingService {
	return service.NewBookingService(
		&fakeTxManager{ledger: ledger},
		&fakeEventRepo{ledger: ledger},
		&fakeUserRepo{ledger: ledger},
		&fakeBookingRepo{ledger: ledger},
		queue.NewTicketFeed(64),
	)
}

func TestBookingService_Book(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - full price without points", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(5)
		event := ledger.addEvent(10000, 10, model.EventTypeTheater)
		svc := newBookingService(ledger)

		result, err := svc.Book(ctx, user.ID, event.ID, false)

		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusDraft, result.Booking.Status)
		assert.Equal(t, 10000.0, result.Booking.Amount)
		assert.Equal(t, 9, ledger.eventTickets(event.ID))
		// Points stay untouched on the full price path.
		assert.Equal(t, 5.0, ledger.userPoints(user.ID))
	})

	t.Run("Success - points cover part of the price", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(3)
		event := ledger.addEvent(10000, 10, model.EventTypeTheater)
		svc := newBookingService(ledger)

		result, err := svc.Book(ctx, user.ID, event.ID, true)

		require.NoError(t, err)
		assert.Equal(t, 7000.0, result.Booking.Amount)
		assert.Equal(t, 3000.0, result.PointsInCurrency)
		assert.Equal(t, 0.0, ledger.userPoints(user.ID))
	})

	t.Run("Success - points exceed the price", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(5)
		event := ledger.addEvent(2000, 10, model.EventTypeTheater)
		svc := newBookingService(ledger)

		result, err := svc.Book(ctx, user.ID, event.ID, true)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Booking.Amount)
		assert.Equal(t, 3.0, ledger.userPoints(user.ID))
	})

	t.Run("Success - fractional remainder is kept", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(2)
		event := ledger.addEvent(1500, 10, model.EventTypeTheater)
		svc := newBookingService(ledger)

		result, err := svc.Book(ctx, user.ID, event.ID, true)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Booking.Amount)
		assert.InDelta(t, 0.5, ledger.userPoints(user.ID), 1e-9)
	})

	t.Run("Failed - ErrNoTicketsAvailable leaves no writes", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(3)
		event := ledger.addEvent(10000, 0, model.EventTypeTheater)
		svc := newBookingService(ledger)

		_, err := svc.Book(ctx, user.ID, event.ID, true)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNoTicketsAvailable)
		assert.Equal(t, 0, ledger.bookingCount())
		assert.Equal(t, 3.0, ledger.userPoints(user.ID))
	})

	t.Run("Failed - ErrEventNotFound", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(0)
		svc := newBookingService(ledger)

		_, err := svc.Book(ctx, user.ID, 999, false)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestBookingService_Book_Concurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("Two buyers one ticket", func(t *testing.T) {
		ledger := newFakeLedger()
		alice := ledger.addUser(0)
		bob := ledger.addUser(0)
		event := ledger.addEvent(5000, 1, model.EventTypeFestival)
		svc := newBookingService(ledger)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, userID := range []int{alice.ID, bob.ID} {
			wg.Add(1)
			go func(i, userID int) {
				defer wg.Done()
				_, errs[i] = svc.Book(ctx, userID, event.ID, false)
			}(i, userID)
		}
		wg.Wait()

		succeeded := 0
		soldOut := 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, apperrors.ErrNoTicketsAvailable):
				soldOut++
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, soldOut)
		assert.Equal(t, 0, ledger.eventTickets(event.ID))
	})

	t.Run("Oversubscribed event never oversells", func(t *testing.T) {
		const buyers = 100
		const stock = 10

		ledger := newFakeLedger()
		event := ledger.addEvent(5000, stock, model.EventTypeFestival)
		userIDs := make([]int, buyers)
		for i := range userIDs {
			userIDs[i] = ledger.addUser(0).ID
		}
		svc := newBookingService(ledger)

		var wg sync.WaitGroup
		errs := make([]error, buyers)
		for i, userID := range userIDs {
			wg.Add(1)
			go func(i, userID int) {
				defer wg.Done()
				_, errs[i] = svc.Book(ctx, userID, event.ID, false)
			}(i, userID)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			}
		}
		assert.Equal(t, stock, succeeded)
		assert.Equal(t, 0, ledger.eventTickets(event.ID))
		assert.Equal(t, stock, ledger.bookingCount())
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - tickets and points restored", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(1)
		event := ledger.addEvent(10000, 9, model.EventTypeTheater)
		booking := ledger.addBooking(user.ID, event.ID, 7000, model.BookingStatusDraft)
		svc := newBookingService(ledger)

		result, err := svc.Cancel(ctx, user.ID, booking.ID)

		require.NoError(t, err)
		assert.Equal(t, 3.0, result.PointsRestored)
		assert.Equal(t, 10, ledger.eventTickets(event.ID))
		assert.Equal(t, 4.0, ledger.userPoints(user.ID))
		assert.Equal(t, 0, ledger.bookingCount())
	})

	t.Run("Success - no restore when balance is zero", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(0)
		event := ledger.addEvent(10000, 9, model.EventTypeTheater)
		booking := ledger.addBooking(user.ID, event.ID, 7000, model.BookingStatusDraft)
		svc := newBookingService(ledger)

		result, err := svc.Cancel(ctx, user.ID, booking.ID)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.PointsRestored)
		assert.Equal(t, 0.0, ledger.userPoints(user.ID))
		assert.Equal(t, 10, ledger.eventTickets(event.ID))
	})

	t.Run("Failed - ErrBookingNotOwned for a missing booking", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(0)
		svc := newBookingService(ledger)

		_, err := svc.Cancel(ctx, user.ID, 42)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotOwned)
	})

	t.Run("Failed - ErrBookingNotOwned for another user's booking", func(t *testing.T) {
		ledger := newFakeLedger()
		owner := ledger.addUser(1)
		stranger := ledger.addUser(0)
		event := ledger.addEvent(10000, 9, model.EventTypeTheater)
		booking := ledger.addBooking(owner.ID, event.ID, 7000, model.BookingStatusDraft)
		svc := newBookingService(ledger)

		_, err := svc.Cancel(ctx, stranger.ID, booking.ID)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotOwned)
		// The owner's booking survives untouched.
		assert.Equal(t, 1, ledger.bookingCount())
		assert.Equal(t, 9, ledger.eventTickets(event.ID))
		assert.Equal(t, 1.0, ledger.userPoints(owner.ID))
	})

	t.Run("Failed - ErrBookingAlreadyPaid for a completed booking", func(t *testing.T) {
		ledger := newFakeLedger()
		user := ledger.addUser(1)
		event := ledger.addEvent(10000, 9, model.EventTypeTheater)
		booking := ledger.addBooking(user.ID, event.ID, 7000, model.BookingStatusCompleted)
		ledger.addPayment(booking.ID, 7000)
		svc := newBookingService(ledger)

		_, err := svc.Cancel(ctx, user.ID, booking.ID)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrBookingAlreadyPaid)
		assert.Equal(t, 1, ledger.bookingCount())
		assert.Equal(t, 9, ledger.eventTickets(event.ID))
		assert.Equal(t, 1.0, ledger.userPoints(user.ID))
	})
}
