package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

func newAccount() *domain.User {
	return &domain.User{
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "A B",
	}
}

func TestCreateAccountCommitsAllThreeWrites(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO auth_users`).
		WithArgs("a@x.com", "$2a$10$hash", "A B").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("user-1", now, now))
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs("user-1", "A B").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("user-1", domain.DefaultRole).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	repo := NewUserRepository(mock)
	user := newAccount()
	require.NoError(t, repo.CreateAccount(context.Background(), user))

	assert.Equal(t, "user-1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountRollsBackWhenRoleInsertFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO auth_users`).
		WithArgs("a@x.com", "$2a$10$hash", "A B").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("user-1", now, now))
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs("user-1", "A B").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("user-1", domain.DefaultRole).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := NewUserRepository(mock)
	err = repo.CreateAccount(context.Background(), newAccount())

	// the transaction never commits: no user row survives the failed signup
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountTranslatesUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO auth_users`).
		WithArgs("a@x.com", "$2a$10$hash", "A B").
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
	mock.ExpectRollback()

	repo := NewUserRepository(mock)
	err = repo.CreateAccount(context.Background(), newAccount())

	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWithRoleDefaultsWhenNoRoleRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT u.id, u.email`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "full_name", "created_at", "updated_at", "role",
		}).AddRow("user-1", "a@x.com", "hash", "A B", now, now, nil))

	repo := NewUserRepository(mock)
	user, role, err := repo.FindWithRole(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, domain.Role(""), role)
}
