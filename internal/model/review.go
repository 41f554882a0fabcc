package model

import "time"

type Review struct {
	ID        int       `json:"review_id" db:"review_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	EventID   int       `json:"event_id" db:"event_id"`
	PaymentID int       `json:"payment_id" db:"payment_id"`
	Review    string    `json:"review" db:"review"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Joined for the paginated review feed.
	Username  string `json:"username,omitempty" db:"-"`
	EventName string `json:"event_name,omitempty" db:"-"`
}

type AddReviewRequest struct {
	PaymentID int    `json:"payment_id" binding:"required"`
	Review    string `json:"review" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
}
