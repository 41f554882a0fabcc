package model

import "time"

// ReferralCode is the unique invite token minted for every user at
// registration. Redeeming another user's code credits that user with
// ReferralPoints and bumps CountUsed on the code.
type ReferralCode struct {
	ID             int       `json:"referral_id" db:"referral_id"`
	UserID         int       `json:"user_id" db:"user_id"`
	Code           string    `json:"referral_code" db:"referral_code"`
	ReferralPoints int       `json:"referral_points" db:"referral_points"`
	CountUsed      int       `json:"count_used" db:"count_used"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// RegistrationResult pairs the new user with the referral code minted for
// them.
type RegistrationResult struct {
	User     *User         `json:"user"`
	Referral *ReferralCode `json:"referral"`
}
