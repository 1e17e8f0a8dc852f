package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail looks up an account by its normalized email. The unique
	// index on the column guarantees at most one match.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type accountRepo struct {
	db *pgxpool.Pool
}

func NewAccountRepo(db *pgxpool.Pool) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, display_name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := querierFrom(ctx, r.db).QueryRow(ctx, query,
		account.ID, account.Email, account.DisplayName,
	).Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return xerrors.ErrEmailInUse
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, email, display_name, created_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, display_name, created_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanOne(ctx, query, email)
}

func (r *accountRepo) scanOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	err := querierFrom(ctx, r.db).QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}
