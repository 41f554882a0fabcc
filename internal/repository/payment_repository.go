package repository

import (
	"context"
	"fmt"

	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `payment_id, booking_id, total_amount, payment_date, payment_status`

type PaymentRepository interface {
	List(ctx context.Context) ([]*model.Payment, error)
	FindByID(ctx context.Context, id int) (*model.Payment, error)
	MonthlyTotals(ctx context.Context) ([]model.MonthlyRevenue, error)
	TotalPaidAmount(ctx context.Context) (float64, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) (*model.Payment, error)
	FindByIDForReview(ctx context.Context, tx pgx.Tx, id int) (*model.Payment, error)
	DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error
}

type PaymentRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &PaymentRepositoryImpl{
		pool: pool,
	}
}

func scanPayment(row pgx.Row, p *model.Payment) error {
	return row.Scan(
		&p.ID,
		&p.BookingID,
		&p.TotalAmount,
		&p.PaymentDate,
		&p.PaymentStatus,
	)
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) (*model.Payment, error) {
	query := `
		INSERT INTO payments (booking_id, total_amount, payment_status)
		VALUES ($1, $2, $3)
		RETURNING ` + paymentColumns

	err := scanPayment(tx.QueryRow(ctx, query,
		payment.BookingID, payment.TotalAmount, payment.PaymentStatus,
	), payment)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrBookingAlreadyPaid
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

const paymentWithBookingQuery = `
	SELECT p.payment_id, p.booking_id, p.total_amount, p.payment_date, p.payment_status,
	       b.booking_id, b.user_id, b.event_id, b.quantity, b.booking_date, b.status, b.amount,
	       e.event_id, e.event_name, e.location, e.image, e.description, e.event_date,
	       e.event_type, e.ticket_available, e.price, e.discounted_price, e.created_at, e.updated_at
	FROM payments p
	JOIN bookings b ON b.booking_id = p.booking_id
	JOIN events e ON e.event_id = b.event_id
`

func scanPaymentWithBooking(row pgx.Row) (*model.Payment, error) {
	var (
		payment model.Payment
		booking model.Booking
		event   model.Event
	)
	err := row.Scan(
		&payment.ID, &payment.BookingID, &payment.TotalAmount, &payment.PaymentDate, &payment.PaymentStatus,
		&booking.ID, &booking.UserID, &booking.EventID, &booking.Quantity,
		&booking.BookingDate, &booking.Status, &booking.Amount,
		&event.ID, &event.Name, &event.Location, &event.Image, &event.Description,
		&event.EventDate, &event.EventType, &event.TicketAvailable, &event.Price,
		&event.DiscountedPrice, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Event = &event
	payment.Booking = &booking
	return &payment, nil
}

// FindByID returns the payment with its booking and event embedded, matching
// the purchase-detail view.
func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Payment, error) {
	payment, err := scanPaymentWithBooking(
		r.pool.QueryRow(ctx, paymentWithBookingQuery+` WHERE p.payment_id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// FindByIDForReview is the same join run inside the review transaction so the
// eligibility checks and the insert observe one consistent snapshot.
func (r *PaymentRepositoryImpl) FindByIDForReview(ctx context.Context, tx pgx.Tx, id int) (*model.Payment, error) {
	payment, err := scanPaymentWithBooking(
		tx.QueryRow(ctx, paymentWithBookingQuery+` WHERE p.payment_id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepositoryImpl) List(ctx context.Context) ([]*model.Payment, error) {
	rows, err := r.pool.Query(ctx, paymentWithBookingQuery+` ORDER BY p.payment_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*model.Payment, 0)
	for rows.Next() {
		payment, err := scanPaymentWithBooking(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// MonthlyTotals sums completed payments by the month of the event date.
func (r *PaymentRepositoryImpl) MonthlyTotals(ctx context.Context) ([]model.MonthlyRevenue, error) {
	query := `
		SELECT EXTRACT(MONTH FROM e.event_date)::int AS month,
		       SUM(p.total_amount) AS total_amount
		FROM payments p
		JOIN bookings b ON b.booking_id = p.booking_id
		JOIN events e ON e.event_id = b.event_id
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]model.MonthlyRevenue, 0)
	for rows.Next() {
		var row model.MonthlyRevenue
		if err := rows.Scan(&row.Month, &row.TotalAmount); err != nil {
			return nil, err
		}
		totals = append(totals, row)
	}

	return totals, rows.Err()
}

func (r *PaymentRepositoryImpl) TotalPaidAmount(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM payments
		WHERE payment_status = $1
	`

	var total float64
	err := r.pool.QueryRow(ctx, query, model.PaymentStatusCompleted).Scan(&total)
	return total, err
}

func (r *PaymentRepositoryImpl) DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error {
	query := `
		DELETE FROM payments
		WHERE booking_id IN (SELECT booking_id FROM bookings WHERE event_id = $1)
	`
	_, err := tx.Exec(ctx, query, eventID)
	return err
}
