package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParsePGErrorCode extracts the SQLSTATE code from a pgx error.
func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrNotFound       = errors.New("not found")
)

// Accounts
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailInUse      = errors.New("email already in use")
	ErrEmailRequired   = errors.New("email required")
)

// Wallets
var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletExists      = errors.New("wallet already exists for this asset")
	ErrAssetNotSupported = errors.New("asset not supported")
	ErrNegativeBalance   = errors.New("operation would make balance negative")
)

// Transfer validation, in the order the checks run
var (
	ErrInvalidAmount       = errors.New("amount is not a valid number")
	ErrAmountTooPrecise    = errors.New("amount exceeds 18 decimal places")
	ErrNonPositiveAmount   = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidEmail        = errors.New("recipient email is invalid")
	ErrSelfTransfer        = errors.New("cannot transfer to your own account")
	ErrRecipientNotFound   = errors.New("recipient not found")
)

// Transfer execution
var (
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	ErrTransferFailed          = errors.New("transfer failed, no funds were moved, safe to retry")
)

// IsValidation reports whether err belongs to the recoverable validation
// class, as opposed to execution errors which are only safe to retry.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrAmountTooPrecise,
		ErrNonPositiveAmount,
		ErrInsufficientBalance,
		ErrInvalidEmail,
		ErrSelfTransfer,
		ErrRecipientNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
