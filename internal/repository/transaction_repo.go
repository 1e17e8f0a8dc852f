package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
)

type TransactionRepository interface {
	// Append writes an immutable ledger record. The server assigns the
	// timestamp; inside a transaction both legs get the same one.
	Append(ctx context.Context, txn *domain.Transaction) error

	// ListByWallet returns records most-recent-first. Sentinel placeholder
	// rows are filtered out and never reach the caller.
	ListByWallet(ctx context.Context, walletID int64, limit, offset int) ([]*domain.Transaction, error)

	CountByWallet(ctx context.Context, walletID int64) (int, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepo(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Append(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions
			(id, wallet_id, kind, amount, fee, counterpart_email, note, transfer_code, status)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9)
		RETURNING created_at
	`
	var fee *string
	if txn.Fee != nil {
		s := txn.Fee.String()
		fee = &s
	}
	err := querierFrom(ctx, r.db).QueryRow(ctx, query,
		txn.ID,
		txn.WalletID,
		txn.Kind,
		txn.Amount.String(),
		fee,
		txn.CounterpartEmail,
		txn.Note,
		txn.TransferCode,
		txn.Status,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) ListByWallet(ctx context.Context, walletID int64, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, wallet_id, kind, amount::text, fee::text, counterpart_email,
		       note, transfer_code, status, created_at
		FROM transactions
		WHERE wallet_id = $1
		  AND id <> $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := querierFrom(ctx, r.db).Query(ctx, query,
		walletID, domain.SentinelTransactionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (r *transactionRepo) CountByWallet(ctx context.Context, walletID int64) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1 AND id <> $2`

	var total int
	err := querierFrom(ctx, r.db).QueryRow(ctx, query, walletID, domain.SentinelTransactionID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn    domain.Transaction
		amount string
		fee    *string
	)
	err := row.Scan(
		&txn.ID,
		&txn.WalletID,
		&txn.Kind,
		&amount,
		&fee,
		&txn.CounterpartEmail,
		&txn.Note,
		&txn.TransferCode,
		&txn.Status,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if fee != nil {
		f, err := decimal.NewFromString(*fee)
		if err != nil {
			return nil, fmt.Errorf("invalid fee %q: %w", *fee, err)
		}
		txn.Fee = &f
	}
	return &txn, nil
}
