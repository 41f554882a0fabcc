package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID       int    `json:"user_id" db:"user_id"`
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
	Role     Role   `json:"role" db:"role"`
	// Points is the loyalty balance. Spending a booking's discount can leave
	// a fractional remainder, so the balance is carried as a float even
	// though referral credits are whole numbers.
	Points       float64   `json:"points" db:"points"`
	RefreshToken *string   `json:"-" db:"refresh_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type RegisterRequest struct {
	Username     string  `json:"username" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=6"`
	ReferralCode *string `json:"referral_code"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Profile bundles everything the account page shows. Referral is nil for
// accounts created before codes were minted on registration.
type Profile struct {
	User     *User         `json:"user"`
	Referral *ReferralCode `json:"referral,omitempty"`
	Bookings []*Booking    `json:"bookings"`
}
