package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clubauth/internal/cache"
	"clubauth/internal/config"
	"clubauth/internal/logger"
	"clubauth/internal/models"
	"clubauth/internal/repository"
)

// Session expiry classes.
const (
	sessionTTL         = 7 * 24 * time.Hour
	rememberSessionTTL = 30 * 24 * time.Hour
)

// Domain errors for auth flows. Each maps to exactly one user-facing
// message; ErrCredentialMismatch covers both unknown username and wrong
// password so usernames cannot be enumerated through login.
var (
	ErrRegistrationDisabled = errors.New("registration disabled")
	ErrUsernameTaken        = errors.New("username taken")
	ErrEmailTaken           = errors.New("email taken")
	ErrCredentialMismatch   = errors.New("credentials mismatch")
	ErrPendingVerification  = errors.New("pending verification")
	ErrLoginDenied          = errors.New("login denied")
)

// AuthService handles registration, login and session lifecycle.
type AuthService struct {
	accounts repository.Accounts
	tokens   cache.TokenStore
	mirror   cache.UserMirror
	hasher   CredentialHasher
	policy   *RegistrationPolicy
	site     config.Site
	log      *logger.Logger
}

func NewAuthService(
	accounts repository.Accounts,
	tokens cache.TokenStore,
	mirror cache.UserMirror,
	hasher CredentialHasher,
	site config.Site,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		mirror:   mirror,
		hasher:   hasher,
		policy:   NewRegistrationPolicy(site),
		site:     site,
		log:      log,
	}
}

var _ Auth = (*AuthService)(nil)

// Register creates a new account and returns a session token for it.
// Uniqueness checks and the insert run inside one transaction scope; the
// token is issued only after that scope commits, so a crash in between
// leaves an account with no session rather than a session with no account.
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (string, error) {
	if !s.site.AllowRegister {
		return "", ErrRegistrationDisabled
	}

	var user *models.User
	err := s.accounts.InTx(ctx, func(store repository.AccountStore) error {
		taken, err := store.UsernameExists(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		taken, err = store.EmailExists(ctx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		user = &models.User{
			Username:       in.Username,
			Email:          in.Email,
			PasswordDigest: s.hasher.Hash(in.Password),
			Status:         s.policy.DecideStatus(in.Username),
			CreatedAt:      time.Now(),
		}
		return store.Insert(ctx, user)
	})
	if err != nil {
		return "", err
	}

	// The mirror is best-effort: a cache fault must not undo a committed
	// registration.
	if err := s.mirror.SaveUser(ctx, user); err != nil {
		s.log.Warnw("user mirror write failed", "user_id", user.ID, "err", err)
	}

	// A fresh account gets a session token regardless of its status;
	// Verifying/Deny are enforced at login only.
	return s.issueToken(ctx, user.ID, false)
}

// Login verifies credentials and returns a session token. The remember
// flag selects the 30-day expiry class instead of the 7-day default.
func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (string, error) {
	digest := s.hasher.Hash(in.Password)

	var user *models.User
	err := s.accounts.InTx(ctx, func(store repository.AccountStore) error {
		u, err := store.GetByCredentials(ctx, in.Username, digest)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return "", err
	}

	if user == nil {
		return "", ErrCredentialMismatch
	}
	switch user.Status {
	case models.StatusVerifying:
		return "", ErrPendingVerification
	case models.StatusDeny:
		return "", ErrLoginDenied
	}

	return s.issueToken(ctx, user.ID, in.Remember)
}

// LogOut deletes the session entry behind token. Calling it with an empty
// token is a no-op, not an error.
func (s *AuthService) LogOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Delete(ctx, token)
}

// IsUserNameRegistered reports whether the exact username is taken.
func (s *AuthService) IsUserNameRegistered(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.accounts.InTx(ctx, func(store repository.AccountStore) error {
		var err error
		exists, err = store.UsernameExists(ctx, username)
		return err
	})
	return exists, err
}

// IsEmailRegistered reports whether the exact email is taken.
func (s *AuthService) IsEmailRegistered(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.accounts.InTx(ctx, func(store repository.AccountStore) error {
		var err error
		exists, err = store.EmailExists(ctx, email)
		return err
	})
	return exists, err
}

// issueToken mints a fresh token for userID and stores it with the expiry
// class selected by remember. Tokens are never reused or rotated.
func (s *AuthService) issueToken(ctx context.Context, userID int64, remember bool) (string, error) {
	token := newToken()
	ttl := sessionTTL
	if remember {
		ttl = rememberSessionTTL
	}
	if err := s.tokens.Save(ctx, token, userID, ttl); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// newToken derives an opaque session token from a fresh random UUID.
func newToken() string {
	sum := sha256.Sum256([]byte(uuid.NewString()))
	return hex.EncodeToString(sum[:])
}
