package repository

import (
	"context"
	"fmt"
	"time"

	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `booking_id, user_id, event_id, quantity, booking_date, status, amount`

type BookingRepository interface {
	FindByID(ctx context.Context, id int) (*model.Booking, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.Booking, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, booking *model.Booking) (*model.Booking, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error)
	MarkCompleted(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error)
	Delete(ctx context.Context, tx pgx.Tx, id int) error
	DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error
}

type BookingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &BookingRepositoryImpl{
		pool: pool,
	}
}

func scanBooking(row pgx.Row, b *model.Booking) error {
	return row.Scan(
		&b.ID,
		&b.UserID,
		&b.EventID,
		&b.Quantity,
		&b.BookingDate,
		&b.Status,
		&b.Amount,
	)
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, booking *model.Booking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (user_id, event_id, quantity, status, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + bookingColumns

	err := scanBooking(tx.QueryRow(ctx, query,
		booking.UserID, booking.EventID, booking.Quantity, booking.Status, booking.Amount,
	), booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return booking, nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_id = $1
	`

	var booking model.Booking
	err := scanBooking(r.pool.QueryRow(ctx, query, id), &booking)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_id = $1
		FOR UPDATE
	`

	var booking model.Booking
	err := scanBooking(tx.QueryRow(ctx, query, id), &booking)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

// ListByUserID returns the user's bookings with the event embedded and the
// payment attached when one exists.
func (r *BookingRepositoryImpl) ListByUserID(ctx context.Context, userID int) ([]*model.Booking, error) {
	query := `
		SELECT b.booking_id, b.user_id, b.event_id, b.quantity, b.booking_date, b.status, b.amount,
		       e.event_id, e.event_name, e.location, e.image, e.description, e.event_date,
		       e.event_type, e.ticket_available, e.price, e.discounted_price, e.created_at, e.updated_at,
		       p.payment_id, p.booking_id, p.total_amount, p.payment_date, p.payment_status
		FROM bookings b
		JOIN events e ON e.event_id = b.event_id
		LEFT JOIN payments p ON p.booking_id = b.booking_id
		WHERE b.user_id = $1
		ORDER BY b.booking_date DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		var (
			booking model.Booking
			event   model.Event

			paymentID     *int
			pBookingID    *int
			pTotalAmount  *float64
			pPaymentDate  *time.Time
			paymentStatus *model.PaymentStatus
		)
		err := rows.Scan(
			&booking.ID, &booking.UserID, &booking.EventID, &booking.Quantity,
			&booking.BookingDate, &booking.Status, &booking.Amount,
			&event.ID, &event.Name, &event.Location, &event.Image, &event.Description,
			&event.EventDate, &event.EventType, &event.TicketAvailable, &event.Price,
			&event.DiscountedPrice, &event.CreatedAt, &event.UpdatedAt,
			&paymentID, &pBookingID, &pTotalAmount, &pPaymentDate, &paymentStatus,
		)
		if err != nil {
			return nil, err
		}

		booking.Event = &event
		if paymentID != nil {
			booking.Payment = &model.Payment{
				ID:            *paymentID,
				BookingID:     *pBookingID,
				TotalAmount:   *pTotalAmount,
				PaymentDate:   *pPaymentDate,
				PaymentStatus: *paymentStatus,
			}
		}
		bookings = append(bookings, &booking)
	}

	return bookings, rows.Err()
}

// MarkCompleted flips a draft booking to completed. The draft guard keeps a
// second concurrent purchase from producing two payments.
func (r *BookingRepositoryImpl) MarkCompleted(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE booking_id = $2 AND status = $3
		RETURNING ` + bookingColumns

	var booking model.Booking
	err := scanBooking(tx.QueryRow(ctx, query,
		model.BookingStatusCompleted, id, model.BookingStatusDraft,
	), &booking)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingAlreadyPaid
		}
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	result, err := tx.Exec(ctx, `DELETE FROM bookings WHERE booking_id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrBookingNotFound
	}

	return nil
}

func (r *BookingRepositoryImpl) DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error {
	_, err := tx.Exec(ctx, `DELETE FROM bookings WHERE event_id = $1`, eventID)
	return err
}
