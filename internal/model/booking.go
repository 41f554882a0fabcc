package model

import "time"

// BookingStatus is the booking state machine: a booking starts as a draft
// claim on one ticket and becomes completed when exactly one payment is
// recorded against it.
type BookingStatus string

const (
	BookingStatusDraft     BookingStatus = "draft"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) IsValid() bool {
	return s == BookingStatusDraft || s == BookingStatusCompleted
}

// CanTransitionTo checks whether the target state is reachable.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return s == BookingStatusDraft && target == BookingStatusCompleted
}

type Booking struct {
	ID          int           `json:"booking_id" db:"booking_id"`
	UserID      int           `json:"user_id" db:"user_id"`
	EventID     int           `json:"event_id" db:"event_id"`
	Quantity    int           `json:"quantity" db:"quantity"`
	BookingDate time.Time     `json:"booking_date" db:"booking_date"`
	Status      BookingStatus `json:"status" db:"status"`
	// Amount is the price actually charged, after any points discount.
	Amount float64 `json:"amount" db:"amount"`

	Event   *Event   `json:"event,omitempty" db:"-"`
	Payment *Payment `json:"payment,omitempty" db:"-"`
}

// BookingResult is what the booking lifecycle manager returns to the caller:
// the created booking plus the pricing breakdown that produced its amount.
type BookingResult struct {
	Booking          *Booking `json:"booking"`
	EventPrice       float64  `json:"event_price"`
	DiscountedPrice  float64  `json:"discounted_price"`
	PointsInCurrency float64  `json:"points_in_currency"`
}

// CancelResult reports the compensation performed when a draft booking is
// removed.
type CancelResult struct {
	PointsRestored float64 `json:"points_restored"`
}
