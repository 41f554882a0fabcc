package model

import "time"

// PaymentStatus has a single observed value; payments are written once and
// never updated.
type PaymentStatus string

const PaymentStatusCompleted PaymentStatus = "completed"

type Payment struct {
	ID            int           `json:"payment_id" db:"payment_id"`
	BookingID     int           `json:"booking_id" db:"booking_id"`
	TotalAmount   float64       `json:"total_amount" db:"total_amount"`
	PaymentDate   time.Time     `json:"payment_date" db:"payment_date"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`

	Booking *Booking `json:"booking,omitempty" db:"-"`
}

// PurchaseResult is returned by the purchase manager.
type PurchaseResult struct {
	Payment     *Payment `json:"payment"`
	TotalAmount float64  `json:"total_amount"`
}
