package model

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleMechanic Role = "mechanic"
)

// Roles lists every assignable role.
var Roles = []Role{RoleUser, RoleAdmin, RoleMechanic}

// UserStatus tells whether an account may sign in.
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// UserStatuses lists every account status.
var UserStatuses = []UserStatus{UserStatusActive, UserStatusBlocked}

// User represents an authenticated user in the system.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	FirstName    string     `json:"first_name" gorm:"size:100;not null"`
	LastName     string     `json:"last_name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone        string     `json:"phone" gorm:"size:50"`
	Role         Role       `json:"role" gorm:"size:20;not null;default:user;index"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Status       UserStatus `json:"status" gorm:"size:20;not null;default:active;index"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsActive reports whether the account may sign in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// ValidUserStatus reports whether s is a known account status.
func ValidUserStatus(s UserStatus) bool {
	for _, v := range UserStatuses {
		if v == s {
			return true
		}
	}
	return false
}
