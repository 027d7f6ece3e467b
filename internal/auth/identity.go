package auth

import "workshop/internal/model"

// Identity is the authenticated caller as seen by domain operations. Role is
// the live role read from the store, not the one embedded in the token.
type Identity struct {
	UserID uint
	Email  string
	Role   model.Role
}

// IsAdmin reports whether the caller bypasses ownership checks.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Owns reports whether the caller may act on a row created by userID.
func (i Identity) Owns(userID uint) bool {
	return i.IsAdmin() || i.UserID == userID
}
