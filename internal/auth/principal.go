// Package auth owns token issuance and verification. Every guarded route
// resolves the bearer token into a single Principal value once; handlers and
// services only ever see the Principal, never raw claims.
package auth

import "artexpo-ticketing/internal/model"

type Principal struct {
	UserID int
	Role   model.Role
}

// IsUser reports whether the principal is the given user.
func (p Principal) IsUser(userID int) bool {
	return p.UserID == userID
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}
