// Package security resolves the caller behind an incoming session token.
package security

import (
	"context"
	"errors"

	"clubauth/internal/cache"
	"clubauth/internal/logger"
	"clubauth/internal/models"
	"clubauth/internal/repository"
)

// ErrNotAuthenticated covers missing, expired and dangling tokens.
var ErrNotAuthenticated = errors.New("not authenticated")

// Manager turns a session token into the user it belongs to. The mirrored
// cache record is tried first; on a miss the durable store is consulted
// and the mirror re-warmed.
type Manager struct {
	tokens   cache.TokenStore
	mirror   cache.UserMirror
	accounts repository.Accounts
	log      *logger.Logger
}

func NewManager(tokens cache.TokenStore, mirror cache.UserMirror, accounts repository.Accounts, log *logger.Logger) *Manager {
	return &Manager{tokens: tokens, mirror: mirror, accounts: accounts, log: log}
}

// Authenticate resolves token to a user. An empty, unknown or expired
// token yields ErrNotAuthenticated.
func (m *Manager) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	id, err := m.tokens.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrTokenNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	u, err := m.mirror.GetUser(ctx, id)
	if err != nil {
		// Treat a broken mirror like a miss and go to the durable store.
		m.log.Warnw("user mirror read failed", "user_id", id, "err", err)
		u = nil
	}
	if u != nil {
		return u, nil
	}

	u, err = m.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// Token points at a record that no longer exists.
		return nil, ErrNotAuthenticated
	}

	if err := m.mirror.SaveUser(ctx, u); err != nil {
		m.log.Warnw("user mirror re-warm failed", "user_id", id, "err", err)
	}
	return u, nil
}
