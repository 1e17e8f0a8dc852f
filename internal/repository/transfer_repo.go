package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

type TransferRepository interface {
	// Create writes the transfer receipt. A duplicate idempotency key maps
	// to ErrDuplicateIdempotencyKey via the unique constraint.
	Create(ctx context.Context, receipt *domain.TransferReceipt, idempotencyKey *string) error

	// GetByIdempotencyKey returns the already-committed receipt for a key,
	// or xerrors.ErrNotFound.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.TransferReceipt, error)
}

type transferRepo struct {
	db *pgxpool.Pool
}

func NewTransferRepo(db *pgxpool.Pool) TransferRepository {
	return &transferRepo{db: db}
}

func (r *transferRepo) Create(ctx context.Context, receipt *domain.TransferReceipt, idempotencyKey *string) error {
	query := `
		INSERT INTO transfers
			(code, idempotency_key, sender_account_id, recipient_account_id,
			 recipient_email, asset, amount, fee, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9)
		RETURNING created_at
	`
	err := querierFrom(ctx, r.db).QueryRow(ctx, query,
		receipt.Code,
		idempotencyKey,
		receipt.SenderAccountID,
		receipt.RecipientAccountID,
		receipt.RecipientEmail,
		receipt.Asset,
		receipt.Amount.String(),
		receipt.Fee.String(),
		receipt.Note,
	).Scan(&receipt.CreatedAt)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *transferRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.TransferReceipt, error) {
	query := `
		SELECT code, sender_account_id, recipient_account_id, recipient_email,
		       asset, amount::text, fee::text, note, created_at
		FROM transfers
		WHERE idempotency_key = $1
	`
	var (
		receipt     domain.TransferReceipt
		amount, fee string
	)
	err := querierFrom(ctx, r.db).QueryRow(ctx, query, key).Scan(
		&receipt.Code,
		&receipt.SenderAccountID,
		&receipt.RecipientAccountID,
		&receipt.RecipientEmail,
		&receipt.Asset,
		&amount,
		&fee,
		&receipt.Note,
		&receipt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transfer by idempotency key: %w", err)
	}
	if receipt.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if receipt.Fee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("invalid fee %q: %w", fee, err)
	}
	receipt.Total = receipt.Amount.Add(receipt.Fee)
	return &receipt, nil
}
