package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindSent       TransactionKind = "sent"
	TransactionKindReceived   TransactionKind = "received"
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// SentinelTransactionID marks placeholder rows that only exist to force
// collection creation in the data imported from the previous backend. They
// carry no visible fields and are filtered from every read path.
const SentinelTransactionID = "initial"

// Transaction is one ledger record belonging to exactly one wallet. A
// transfer produces two independent records, one per side, linked only by
// the shared transfer code and mirrored counterpart emails. Records are
// immutable once written.
type Transaction struct {
	ID               string            `json:"id"`
	WalletID         int64             `json:"wallet_id"`
	Kind             TransactionKind   `json:"kind"`
	Amount           decimal.Decimal   `json:"amount"`
	Fee              *decimal.Decimal  `json:"fee,omitempty"` // present only on "sent"
	CounterpartEmail string            `json:"counterpart_email,omitempty"`
	Note             string            `json:"note,omitempty"`
	TransferCode     *string           `json:"transfer_code,omitempty"`
	Status           TransactionStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// TransferReceipt is returned to the caller after a committed transfer.
type TransferReceipt struct {
	Code               string          `json:"code"`
	SenderAccountID    string          `json:"sender_account_id"`
	RecipientAccountID string          `json:"recipient_account_id"`
	RecipientEmail     string          `json:"recipient_email"`
	Asset              string          `json:"asset"`
	Amount             decimal.Decimal `json:"amount"`
	Fee                decimal.Decimal `json:"fee"`
	Total              decimal.Decimal `json:"total"`
	Note               string          `json:"note,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}
