package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubauth/internal/models"
)

// AccountRepository implements Accounts over sqlite. The zero receiver
// queries through the pool; InTx rebinds queries to a single transaction.
type AccountRepository struct {
	db *sql.DB
	q  DBTX
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db, q: db}
}

// Ensure implementation of Accounts interface at compile time.
var _ Accounts = (*AccountRepository)(nil)

const (
	existsByUsernameSQL = `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`
	existsByEmailSQL    = `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	selectUserColumns = `id, username, email, password_digest, status, created_at`

	selectByCredentialsSQL = `SELECT ` + selectUserColumns + ` FROM users WHERE username = ? AND password_digest = ?`
	selectByIDSQL          = `SELECT ` + selectUserColumns + ` FROM users WHERE id = ?`

	insertUserSQL = `INSERT INTO users (username, email, password_digest, status, created_at) VALUES (?, ?, ?, ?, ?)`
)

// UsernameExists reports whether a user record holds the exact username.
func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.q.QueryRowContext(ctx, existsByUsernameSQL, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check username %q: %w", username, err)
	}
	return exists, nil
}

// EmailExists reports whether a user record holds the exact email.
func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.q.QueryRowContext(ctx, existsByEmailSQL, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email %q: %w", email, err)
	}
	return exists, nil
}

// GetByCredentials fetches the user matching both username and digest.
// Returns (nil, nil) if no record matches.
func (r *AccountRepository) GetByCredentials(ctx context.Context, username, passwordDigest string) (*models.User, error) {
	u, err := r.scanUser(r.q.QueryRowContext(ctx, selectByCredentialsSQL, username, passwordDigest))
	if err != nil {
		return nil, fmt.Errorf("select user %q by credentials: %w", username, err)
	}
	return u, nil
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := r.scanUser(r.q.QueryRowContext(ctx, selectByIDSQL, id))
	if err != nil {
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return u, nil
}

// Insert stores a new user and fills in the assigned id.
func (r *AccountRepository) Insert(ctx context.Context, u *models.User) error {
	res, err := r.q.ExecContext(ctx, insertUserSQL,
		u.Username, u.Email, u.PasswordDigest, int(u.Status), u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id for user %q: %w", u.Username, err)
	}
	u.ID = lastID
	return nil
}

// InTx runs fn against a store bound to one transaction. The transaction
// is released on every exit path: committed when fn returns nil, rolled
// back on error or panic.
func (r *AccountRepository) InTx(ctx context.Context, fn func(AccountStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback()
	}()

	if err := fn(&AccountRepository{db: r.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *AccountRepository) scanUser(row *sql.Row) (*models.User, error) {
	var (
		u      models.User
		status int
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordDigest, &status, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Status = models.UserStatus(status)
	return &u, nil
}
