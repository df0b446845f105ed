package models

import "time"

// UserStatus controls login eligibility.
type UserStatus int

const (
	StatusActive    UserStatus = 0 // may log in
	StatusVerifying UserStatus = 1 // awaiting admin approval
	StatusDeny      UserStatus = 2 // blocked from logging in
)

func (s UserStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusVerifying:
		return "verifying"
	case StatusDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// User is a durable account record. Username and email are each unique
// across all records; the durable store enforces this with constraints.
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordDigest string     `json:"-"` // don’t expose digest
	Status         UserStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput carries a login attempt. Remember extends the session expiry.
type LoginInput struct {
	Username string
	Password string
	Remember bool
}
