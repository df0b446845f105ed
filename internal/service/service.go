package service

import (
	"context"

	"clubauth/internal/cache"
	"clubauth/internal/config"
	"clubauth/internal/logger"
	"clubauth/internal/models"
	"clubauth/internal/repository"
)

// Auth exposes the registration/authentication operations.
type Auth interface {
	Register(ctx context.Context, in models.RegisterInput) (string, error)
	Login(ctx context.Context, in models.LoginInput) (string, error)
	// LogOut invalidates the given session token; a missing token is a no-op.
	LogOut(ctx context.Context, token string) error
	IsUserNameRegistered(ctx context.Context, username string) (bool, error)
	IsEmailRegistered(ctx context.Context, email string) (bool, error)
}

// Service aggregates all sub-services.
type Service struct {
	Auth
}

// NewService wires the repository and cache layers into concrete services.
func NewService(repos *repository.Repository, c *cache.Cache, cfg *config.Config, log *logger.Logger) *Service {
	hasher := NewArgon2Hasher(cfg.HasherPepper)
	return &Service{
		Auth: NewAuthService(repos.Accounts, c.Tokens, c.Users, hasher, cfg.Site, log),
	}
}
