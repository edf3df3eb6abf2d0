package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// ErrDuplicateEmail is returned when an insert hits the unique email
// constraint. The constraint, not the pre-check, is what closes the
// concurrent-signup race.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolationCode = "23505"

// UserRepository defines persistence access for accounts and their roles.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// CreateAccount persists the user, its profile row, and the default
	// reader role in a single transaction. On any failure nothing is
	// persisted.
	CreateAccount(ctx context.Context, user *domain.User) error
	// FindWithRole joins the user with its newest role assignment. The
	// returned role is empty when no role row exists; defaulting to reader
	// happens at the application layer.
	FindWithRole(ctx context.Context, id string) (*domain.User, domain.Role, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, password_hash, full_name, created_at, updated_at
        FROM auth_users WHERE email=$1`

	var user domain.User
	if err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CreateAccount(ctx context.Context, user *domain.User) error {
	const insertUser = `
        INSERT INTO auth_users (email, password_hash, full_name)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	const insertProfile = `
        INSERT INTO profiles (id, full_name)
        VALUES ($1, $2)`
	const insertRole = `
        INSERT INTO user_roles (user_id, role)
        VALUES ($1, $2)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, insertUser,
		user.Email,
		user.PasswordHash,
		user.FullName,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return translateUnique(err)
	}

	if _, err := tx.Exec(ctx, insertProfile, user.ID, user.FullName); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, insertRole, user.ID, domain.DefaultRole); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *userRepository) FindWithRole(ctx context.Context, id string) (*domain.User, domain.Role, error) {
	const query = `
        SELECT u.id, u.email, u.password_hash, u.full_name, u.created_at, u.updated_at, ur.role
        FROM auth_users u
        LEFT JOIN user_roles ur ON ur.user_id = u.id
        WHERE u.id=$1
        ORDER BY ur.created_at DESC NULLS LAST
        LIMIT 1`

	var (
		user domain.User
		role *string
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&role,
	); err != nil {
		return nil, "", err
	}
	if role == nil {
		return &user, "", nil
	}
	return &user, domain.Role(*role), nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicateEmail
	}
	return err
}
