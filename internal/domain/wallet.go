package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

// Wallet is the balance record for one (account, asset) pair. Balance is a
// decimal in asset units, never negative. The address is a cosmetic
// receiving address, not a chain key.
type Wallet struct {
	ID        int64           `json:"id"`
	AccountID string          `json:"account_id"`
	Asset     string          `json:"asset"`
	Name      string          `json:"name"`
	Address   string          `json:"address"`
	Color     string          `json:"color"`
	Change24h float64         `json:"change_24h"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// HasSufficientFunds reports whether the wallet can cover total (amount + fee).
func (w *Wallet) HasSufficientFunds(total decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(total)
}

// Debit subtracts total from the balance, refusing to go negative.
func (w *Wallet) Debit(total decimal.Decimal) error {
	if total.Sign() <= 0 {
		return xerrors.ErrNonPositiveAmount
	}
	if !w.HasSufficientFunds(total) {
		return xerrors.ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(total)
	return nil
}

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return xerrors.ErrNonPositiveAmount
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// WalletCreate carries the fields needed to open a wallet. Address and
// display metadata are filled from the asset catalog by the usecase.
type WalletCreate struct {
	AccountID string
	Asset     string
	Name      string
	Address   string
	Color     string
}
