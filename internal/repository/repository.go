package repository

import (
	"context"
	"database/sql"

	"clubauth/internal/models"
)

// DBTX is the subset of database/sql used by the account store. Both
// *sql.DB and *sql.Tx satisfy it, which lets the same queries run inside
// or outside a transaction scope.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountStore is the durable-record contract consumed by the auth service.
type AccountStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// GetByCredentials returns (nil, nil) when no record matches both the
	// username and the password digest.
	GetByCredentials(ctx context.Context, username, passwordDigest string) (*models.User, error)
	// GetByID returns (nil, nil) when the id is unknown.
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// Insert stores u and fills in its assigned ID.
	Insert(ctx context.Context, u *models.User) error
}

// Accounts adds a per-call transaction scope on top of AccountStore.
// InTx runs fn against a store bound to one transaction; the transaction
// is rolled back unless fn returns nil.
type Accounts interface {
	AccountStore
	InTx(ctx context.Context, fn func(AccountStore) error) error
}

type Repository struct {
	Accounts Accounts
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Accounts: NewAccountRepository(db),
	}
}
