package cache

import (
	"context"
	"errors"
	"time"

	"clubauth/internal/models"
)

// ErrTokenNotFound is returned when a token is absent or has expired.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore maps opaque session tokens to user ids with per-entry expiry.
type TokenStore interface {
	Save(ctx context.Context, token string, userID int64, ttl time.Duration) error
	// Resolve returns the user id a live token belongs to, or ErrTokenNotFound.
	Resolve(ctx context.Context, token string) (int64, error)
	// Delete removes a token; deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}

// UserMirror is a write-through copy of user records keyed by id, written
// best-effort after insert and read by the security manager.
type UserMirror interface {
	SaveUser(ctx context.Context, u *models.User) error
	// GetUser returns (nil, nil) when the id is not mirrored.
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Cache aggregates the redis-backed stores.
type Cache struct {
	Tokens TokenStore
	Users  UserMirror
}
