package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
)

type ledgerFixture struct {
	store    *memStore
	ledgerUC *LedgerUsecase
	wallet   *domain.Wallet
	account  *domain.Account
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	store := newMemStore()
	walletRepo := &memWalletRepo{store: store}
	txnRepo := &memTransactionRepo{store: store}

	// Unreachable on purpose: every History call reads through to the repo.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	ledgerUC := NewLedgerUsecase(txnRepo, walletRepo, rdb, zap.NewNop())

	account := store.addAccount("acct-carol", "carol@example.com")
	wallet := store.addWallet(account.ID, "BTC", "1")
	return &ledgerFixture{store: store, ledgerUC: ledgerUC, wallet: wallet, account: account}
}

func (f *ledgerFixture) seedTxn(id string, kind domain.TransactionKind, createdAt time.Time) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.txns = append(f.store.txns, &domain.Transaction{
		ID:        id,
		WalletID:  f.wallet.ID,
		Kind:      kind,
		Amount:    decimal.RequireFromString("1"),
		Status:    domain.TransactionStatusCompleted,
		CreatedAt: createdAt,
	})
}

func TestHistoryFiltersSentinelRows(t *testing.T) {
	f := newLedgerFixture(t)
	now := time.Now()

	// Imported placeholder row plus two real records, seeded oldest-first.
	f.seedTxn(domain.SentinelTransactionID, domain.TransactionKindDeposit, now.Add(-3*time.Hour))
	f.seedTxn("txn_older", domain.TransactionKindDeposit, now.Add(-2*time.Hour))
	f.seedTxn("txn_newer", domain.TransactionKindReceived, now.Add(-time.Hour))

	txns, _, err := f.ledgerUC.History(context.Background(), f.wallet.ID, 10, 0)
	require.NoError(t, err)

	require.Len(t, txns, 2)
	assert.Equal(t, "txn_newer", txns[0].ID)
	assert.Equal(t, "txn_older", txns[1].ID)
	for _, txn := range txns {
		assert.NotEqual(t, domain.SentinelTransactionID, txn.ID)
	}
}

func TestHistoryOrdersMostRecentFirst(t *testing.T) {
	f := newLedgerFixture(t)
	now := time.Now()

	// Same-timestamp records fall back to id order, descending.
	f.seedTxn("txn_b", domain.TransactionKindDeposit, now.Add(-time.Hour))
	f.seedTxn("txn_a", domain.TransactionKindDeposit, now.Add(-time.Hour))
	f.seedTxn("txn_oldest", domain.TransactionKindDeposit, now.Add(-2*time.Hour))
	f.seedTxn("txn_latest", domain.TransactionKindSent, now)

	txns, _, err := f.ledgerUC.History(context.Background(), f.wallet.ID, 10, 0)
	require.NoError(t, err)

	ids := make([]string, len(txns))
	for i, txn := range txns {
		ids[i] = txn.ID
	}
	assert.Equal(t, []string{"txn_latest", "txn_b", "txn_a", "txn_oldest"}, ids)
}

func TestSubscribeSnapshotExcludesSentinel(t *testing.T) {
	f := newLedgerFixture(t)
	now := time.Now()

	f.seedTxn(domain.SentinelTransactionID, domain.TransactionKindDeposit, now.Add(-2*time.Hour))
	f.seedTxn("txn_real", domain.TransactionKindDeposit, now.Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan []*domain.Transaction, 1)
	unsubscribe, err := f.ledgerUC.Subscribe(ctx, f.account.ID, "BTC", func(txns []*domain.Transaction) {
		select {
		case updates <- txns:
		default:
		}
	})
	require.NoError(t, err)
	defer unsubscribe()

	// The initial snapshot is pushed before Subscribe returns.
	snapshot := <-updates
	require.Len(t, snapshot, 1)
	assert.Equal(t, "txn_real", snapshot[0].ID)
}
