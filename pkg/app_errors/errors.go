package apperrors

import "errors"

// Not found
var (
	ErrEventNotFound   = errors.New("event does not exist")
	ErrUserNotFound    = errors.New("user does not exist")
	ErrBookingNotFound = errors.New("booking does not exist")
	ErrPaymentNotFound = errors.New("payment not found")
)

// Unavailable
var ErrNoTicketsAvailable = errors.New("no tickets available for this event")

// Conflict
var (
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrReviewAlreadyExists    = errors.New("review already exists for this payment")
	ErrBookingAlreadyPaid     = errors.New("booking has already been paid")
)

// Invalid input
var (
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrInvalidInput        = errors.New("invalid input")
)

// Forbidden / unauthorized
var (
	// ErrBookingNotOwned covers both a missing booking and an ownership
	// mismatch so callers cannot probe for other users' booking ids.
	ErrBookingNotOwned    = errors.New("booking does not exist or does not belong to the user")
	ErrNotPaymentOwner    = errors.New("you can only write a review for your own payment")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAdminRequired      = errors.New("admin role required")
)

// Invalid state
var ErrEventNotCompleted = errors.New("reviews can only be written for completed events")

// Retryable: the transaction lost a serialization or deadlock race.
// The core never retries; the HTTP layer may retry the call once.
var ErrTxConflict = errors.New("transaction conflict, retry")

var ErrInternalServerError = errors.New("internal server error")
