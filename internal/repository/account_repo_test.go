package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"clubauth/internal/models"
)

func newMockRepo(t *testing.T) (*AccountRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewAccountRepository(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_digest", "status", "created_at"}).
		AddRow(u.ID, u.Username, u.Email, u.PasswordDigest, int(u.Status), u.CreatedAt)
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func TestAccountRepository_UsernameExists(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		mockExpect func(sqlmock.Sqlmock)
		want       bool
		wantErr    bool
	}{
		{
			name:     "taken",
			username: "alice",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(existsByUsernameSQL)).
					WithArgs("alice").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name:     "free",
			username: "bob",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(existsByUsernameSQL)).
					WithArgs("bob").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name:     "query error",
			username: "carol",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(existsByUsernameSQL)).
					WithArgs("carol").
					WillReturnError(errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			got, err := repo.UsernameExists(context.Background(), tt.username)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAccountRepository_EmailExists(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(existsByEmailSQL)).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	got, err := repo.EmailExists(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected email to exist")
	}
}

func TestAccountRepository_GetByCredentials(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stored := &models.User{
		ID:             7,
		Username:       "diana",
		Email:          "diana@example.com",
		PasswordDigest: "d1g3st",
		Status:         models.StatusActive,
		CreatedAt:      created,
	}

	tests := []struct {
		name       string
		mockExpect func(sqlmock.Sqlmock)
		wantUser   *models.User
		wantErr    bool
	}{
		{
			name: "match",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectByCredentialsSQL)).
					WithArgs("diana", "d1g3st").
					WillReturnRows(userRows(stored))
			},
			wantUser: stored,
		},
		{
			name: "no match returns nil without error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectByCredentialsSQL)).
					WithArgs("diana", "d1g3st").
					WillReturnError(sql.ErrNoRows)
			},
			wantUser: nil,
		},
		{
			name: "query error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectByCredentialsSQL)).
					WithArgs("diana", "d1g3st").
					WillReturnError(errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			got, err := repo.GetByCredentials(context.Background(), "diana", "d1g3st")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantUser == nil {
				if got != nil {
					t.Fatalf("expected nil user, got %+v", got)
				}
				return
			}
			if got == nil || *got != *tt.wantUser {
				t.Fatalf("expected %+v, got %+v", tt.wantUser, got)
			}
		})
	}
}

func TestAccountRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectByIDSQL)).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil user, got %+v", got)
	}
}

func TestAccountRepository_Insert(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		mockExpect     func(sqlmock.Sqlmock)
		wantID         int64
		wantErr        bool
		errContainsStr string
	}{
		{
			name: "success assigns id",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "alice@example.com", "h123", int(models.StatusVerifying), created).
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name: "exec error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "alice@example.com", "h123", int(models.StatusVerifying), created).
					WillReturnError(errors.New("db exec failed"))
			},
			wantErr:        true,
			errContainsStr: "insert user",
		},
		{
			name: "last insert id error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "alice@example.com", "h123", int(models.StatusVerifying), created).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
			},
			wantErr:        true,
			errContainsStr: "get last insert id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			u := &models.User{
				Username:       "alice",
				Email:          "alice@example.com",
				PasswordDigest: "h123",
				Status:         models.StatusVerifying,
				CreatedAt:      created,
			}
			err := repo.Insert(context.Background(), u)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContainsStr != "" && !contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContainsStr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.ID != tt.wantID {
				t.Fatalf("expected assigned id %d, got %d", tt.wantID, u.ID)
			}
		})
	}
}

func TestAccountRepository_InTx_CommitsOnSuccess(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(existsByUsernameSQL)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(store AccountStore) error {
		taken, err := store.UsernameExists(context.Background(), "alice")
		if err != nil {
			return err
		}
		if taken {
			t.Fatalf("expected username to be free")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountRepository_InTx_RollsBackOnError(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	want := errors.New("business rule failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(store AccountStore) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v to pass through unchanged, got %v", want, err)
	}
}

func TestAccountRepository_InTx_BeginError(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	err := repo.InTx(context.Background(), func(store AccountStore) error {
		t.Fatal("fn should not run when begin fails")
		return nil
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}
