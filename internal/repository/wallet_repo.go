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

type WalletRepository interface {
	Create(ctx context.Context, create *domain.WalletCreate) (*domain.Wallet, error)
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)
	GetByAccountAsset(ctx context.Context, accountID, asset string) (*domain.Wallet, error)

	// GetByAccountAssetForUpdate locks the wallet row (SELECT FOR UPDATE).
	// Only meaningful inside TxManager.WithinTx.
	GetByAccountAssetForUpdate(ctx context.Context, accountID, asset string) (*domain.Wallet, error)

	ListByAccount(ctx context.Context, accountID string) ([]*domain.Wallet, error)

	// UpdateBalance writes the new balance. The balances CHECK constraint
	// is the last line of defense against a negative write.
	UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error

	UpdateChange24h(ctx context.Context, asset string, change float64) error
}

type walletRepo struct {
	db *pgxpool.Pool
}

func NewWalletRepo(db *pgxpool.Pool) WalletRepository {
	return &walletRepo{db: db}
}

const walletColumns = `
	id, account_id, asset, name, address, color, change_24h,
	balance::text, created_at, updated_at
`

func (r *walletRepo) Create(ctx context.Context, create *domain.WalletCreate) (*domain.Wallet, error) {
	query := `
		INSERT INTO wallets (account_id, asset, name, address, color, balance)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING ` + walletColumns

	row := querierFrom(ctx, r.db).QueryRow(ctx, query,
		create.AccountID, create.Asset, create.Name, create.Address, create.Color,
	)
	wallet, err := scanWallet(row)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return nil, xerrors.ErrWalletExists
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

func (r *walletRepo) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *walletRepo) GetByAccountAsset(ctx context.Context, accountID, asset string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE account_id = $1 AND asset = $2`
	return r.getOne(ctx, query, accountID, asset)
}

func (r *walletRepo) GetByAccountAssetForUpdate(ctx context.Context, accountID, asset string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE account_id = $1 AND asset = $2 FOR UPDATE`
	return r.getOne(ctx, query, accountID, asset)
}

func (r *walletRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Wallet, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, query, args...)
	wallet, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

func (r *walletRepo) ListByAccount(ctx context.Context, accountID string) ([]*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE account_id = $1 ORDER BY created_at`

	rows, err := querierFrom(ctx, r.db).Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}
	return wallets, rows.Err()
}

func (r *walletRepo) UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET balance = $2::numeric, updated_at = now()
		WHERE id = $1
	`
	tag, err := querierFrom(ctx, r.db).Exec(ctx, query, walletID, balance.String())
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23514" { // check_violation
			return xerrors.ErrNegativeBalance
		}
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrWalletNotFound
	}
	return nil
}

func (r *walletRepo) UpdateChange24h(ctx context.Context, asset string, change float64) error {
	query := `UPDATE wallets SET change_24h = $2 WHERE asset = $1`
	if _, err := querierFrom(ctx, r.db).Exec(ctx, query, asset, change); err != nil {
		return fmt.Errorf("failed to update 24h change: %w", err)
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		wallet  domain.Wallet
		balance string
	)
	err := row.Scan(
		&wallet.ID,
		&wallet.AccountID,
		&wallet.Asset,
		&wallet.Name,
		&wallet.Address,
		&wallet.Color,
		&wallet.Change24h,
		&balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	wallet.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	return &wallet, nil
}
