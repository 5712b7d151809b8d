// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Account roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account approval statuses. Status moves pending -> approved or
// pending -> declined by admin action; a declined account returns to
// pending when the user resubmits a signup.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// User represents an account in the approval-gated directory.
// Password holds the bcrypt hash, never the plaintext.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"not null;default:user" json:"role"`
	Status    string    `gorm:"not null;default:pending;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PendingUser is the reduced projection returned to admins reviewing
// the signup queue.
type PendingUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
