package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recicla-soft/recicla/internal/shared"
)

// RepositoryPort defines account persistence for the auth service.
type RepositoryPort interface {
	Create(ctx context.Context, name, email, passwordHash string) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
}

// Repository implements RepositoryPort on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new account. A taken email maps to a duplicate-name error.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx, `INSERT INTO accounts (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, name, email, password_hash, created_at`,
		name, email, passwordHash).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, shared.NewError(shared.KindDuplicateName, "email already registered")
		}
		return Account{}, storageErr(err)
	}
	return acc, nil
}

// FindByEmail fetches an account by email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, password_hash, created_at
FROM accounts
WHERE lower(email) = lower($1)`, email).Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.NewError(shared.KindNotFound, "account not found")
		}
		return Account{}, storageErr(err)
	}
	return acc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func storageErr(err error) error {
	return shared.WrapError(shared.KindStorage, "account store unavailable", err)
}
