package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/pub"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

// memStore backs the in-memory repositories below. The fake TxManager
// snapshots and restores it, so a failing step inside WithinTx leaves no
// partial state, same as a rolled-back database transaction.
type memStore struct {
	mu sync.Mutex

	accounts     map[string]*domain.Account
	emailToID    map[string]string
	wallets      map[int64]*domain.Wallet
	walletIdx    map[string]int64 // accountID|asset -> wallet id
	nextWalletID int64
	txns         []*domain.Transaction
	receipts     map[string]*domain.TransferReceipt // idempotency key -> receipt
}

func newMemStore() *memStore {
	return &memStore{
		accounts:  map[string]*domain.Account{},
		emailToID: map[string]string{},
		wallets:   map[int64]*domain.Wallet{},
		walletIdx: map[string]int64{},
		receipts:  map[string]*domain.TransferReceipt{},
	}
}

func walletKey(accountID, asset string) string {
	return accountID + "|" + asset
}

func (s *memStore) addAccount(id, email string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := &domain.Account{ID: id, Email: domain.NormalizeEmail(email), CreatedAt: time.Now()}
	s.accounts[id] = acct
	s.emailToID[acct.Email] = id
	return acct
}

func (s *memStore) addWallet(accountID, asset, balance string) *domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextWalletID++
	w := &domain.Wallet{
		ID:        s.nextWalletID,
		AccountID: accountID,
		Asset:     asset,
		Balance:   decimal.RequireFromString(balance),
	}
	s.wallets[w.ID] = w
	s.walletIdx[walletKey(accountID, asset)] = w.ID
	return w
}

func (s *memStore) setBalance(walletID int64, balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[walletID].Balance = decimal.RequireFromString(balance)
}

func (s *memStore) balanceOf(accountID, asset string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.walletIdx[walletKey(accountID, asset)]
	if !ok {
		return decimal.Zero
	}
	return s.wallets[id].Balance
}

func (s *memStore) txnsForWallet(walletID int64) []*domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, txn := range s.txns {
		if txn.WalletID == walletID {
			out = append(out, txn)
		}
	}
	return out
}

type memSnapshot struct {
	wallets      map[int64]*domain.Wallet
	walletIdx    map[string]int64
	nextWalletID int64
	txnCount     int
	receipts     map[string]*domain.TransferReceipt
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		wallets:      make(map[int64]*domain.Wallet, len(s.wallets)),
		walletIdx:    make(map[string]int64, len(s.walletIdx)),
		nextWalletID: s.nextWalletID,
		txnCount:     len(s.txns),
		receipts:     make(map[string]*domain.TransferReceipt, len(s.receipts)),
	}
	for id, w := range s.wallets {
		cp := *w
		snap.wallets[id] = &cp
	}
	for k, v := range s.walletIdx {
		snap.walletIdx[k] = v
	}
	for k, v := range s.receipts {
		snap.receipts[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = snap.wallets
	s.walletIdx = snap.walletIdx
	s.nextWalletID = snap.nextWalletID
	s.txns = s.txns[:snap.txnCount]
	s.receipts = snap.receipts
}

// memTxManager mimics WithinTx semantics: fn failing means nothing it wrote
// survives.
type memTxManager struct {
	store *memStore
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type memAccountRepo struct {
	store *memStore
}

func (r *memAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.emailToID[account.Email]; ok {
		return xerrors.ErrEmailInUse
	}
	cp := *account
	r.store.accounts[account.ID] = &cp
	r.store.emailToID[account.Email] = account.ID
	return nil
}

func (r *memAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acct, ok := r.store.accounts[id]
	if !ok {
		return nil, xerrors.ErrAccountNotFound
	}
	cp := *acct
	return &cp, nil
}

func (r *memAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id, ok := r.store.emailToID[email]
	if !ok {
		return nil, xerrors.ErrAccountNotFound
	}
	cp := *r.store.accounts[id]
	return &cp, nil
}

type memWalletRepo struct {
	store *memStore

	// onLock runs before a FOR UPDATE read, standing in for a concurrent
	// writer that slips in between validation and locking.
	onLock func(accountID string)

	// onCreate runs before an insert, standing in for a concurrent writer
	// that slips in between the missing-wallet lookup and the insert.
	onCreate func(accountID, asset string)
}

func (r *memWalletRepo) Create(ctx context.Context, create *domain.WalletCreate) (*domain.Wallet, error) {
	if r.onCreate != nil {
		r.onCreate(create.AccountID, create.Asset)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.walletIdx[walletKey(create.AccountID, create.Asset)]; ok {
		return nil, xerrors.ErrWalletExists
	}
	r.store.nextWalletID++
	w := &domain.Wallet{
		ID:        r.store.nextWalletID,
		AccountID: create.AccountID,
		Asset:     create.Asset,
		Name:      create.Name,
		Address:   create.Address,
		Color:     create.Color,
		Balance:   decimal.Zero,
	}
	r.store.wallets[w.ID] = w
	r.store.walletIdx[walletKey(create.AccountID, create.Asset)] = w.ID
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[id]
	if !ok {
		return nil, xerrors.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) GetByAccountAsset(ctx context.Context, accountID, asset string) (*domain.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id, ok := r.store.walletIdx[walletKey(accountID, asset)]
	if !ok {
		return nil, xerrors.ErrWalletNotFound
	}
	cp := *r.store.wallets[id]
	return &cp, nil
}

func (r *memWalletRepo) GetByAccountAssetForUpdate(ctx context.Context, accountID, asset string) (*domain.Wallet, error) {
	if r.onLock != nil {
		r.onLock(accountID)
	}
	return r.GetByAccountAsset(ctx, accountID, asset)
}

func (r *memWalletRepo) ListByAccount(ctx context.Context, accountID string) ([]*domain.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Wallet
	for _, w := range r.store.wallets {
		if w.AccountID == accountID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memWalletRepo) UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[walletID]
	if !ok {
		return xerrors.ErrWalletNotFound
	}
	if balance.IsNegative() {
		return xerrors.ErrNegativeBalance
	}
	w.Balance = balance
	return nil
}

func (r *memWalletRepo) UpdateChange24h(ctx context.Context, asset string, change float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, w := range r.store.wallets {
		if w.Asset == asset {
			w.Change24h = change
		}
	}
	return nil
}

type memTransactionRepo struct {
	store *memStore

	// failOnKind forces Append to fail for one record kind, simulating a
	// write error mid-transaction.
	failOnKind domain.TransactionKind
}

func (r *memTransactionRepo) Append(ctx context.Context, txn *domain.Transaction) error {
	if r.failOnKind != "" && txn.Kind == r.failOnKind {
		return fmt.Errorf("append rejected for kind %s", txn.Kind)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn.CreatedAt = time.Now()
	cp := *txn
	r.store.txns = append(r.store.txns, &cp)
	return nil
}

func (r *memTransactionRepo) ListByWallet(ctx context.Context, walletID int64, limit, offset int) ([]*domain.Transaction, error) {
	txns := r.store.txnsForWallet(walletID)
	if offset >= len(txns) {
		return nil, nil
	}
	txns = txns[offset:]
	if limit < len(txns) {
		txns = txns[:limit]
	}
	return txns, nil
}

func (r *memTransactionRepo) CountByWallet(ctx context.Context, walletID int64) (int, error) {
	return len(r.store.txnsForWallet(walletID)), nil
}

type memTransferRepo struct {
	store *memStore
}

func (r *memTransferRepo) Create(ctx context.Context, receipt *domain.TransferReceipt, idempotencyKey *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if idempotencyKey != nil {
		if _, ok := r.store.receipts[*idempotencyKey]; ok {
			return xerrors.ErrDuplicateIdempotencyKey
		}
		cp := *receipt
		r.store.receipts[*idempotencyKey] = &cp
	}
	return nil
}

func (r *memTransferRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.TransferReceipt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	receipt, ok := r.store.receipts[key]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *receipt
	return &cp, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*pub.TransactionEvent
}

func (p *capturePublisher) PublishTransactionEvent(ctx context.Context, event *pub.TransactionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type transferFixture struct {
	store      *memStore
	walletRepo *memWalletRepo
	txnRepo    *memTransactionRepo
	publisher  *capturePublisher
	uc         *TransferUsecase

	sender     *domain.Account
	recipient  *domain.Account
	feeAccount *domain.Account
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	store := newMemStore()
	walletRepo := &memWalletRepo{store: store}
	txnRepo := &memTransactionRepo{store: store}
	publisher := &capturePublisher{}
	logger := zap.NewNop()

	// Unreachable on purpose: cache invalidation degrades to a warn log.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	ledgerUC := NewLedgerUsecase(txnRepo, walletRepo, rdb, logger)

	uc := NewTransferUsecase(
		&memAccountRepo{store: store},
		walletRepo,
		&memTransferRepo{store: store},
		txnRepo,
		&memTxManager{store: store},
		ledgerUC,
		publisher,
		nil,
		5*time.Second,
		logger,
	)

	f := &transferFixture{
		store:      store,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		publisher:  publisher,
		uc:         uc,
	}
	f.sender = store.addAccount("acct-alice", "alice@example.com")
	f.recipient = store.addAccount("acct-bob", "bob@example.com")
	f.feeAccount = store.addAccount("acct-fees", SystemFeeEmail)
	store.addWallet(f.sender.ID, "BTC", "10")
	return f
}

func (f *transferFixture) input(amount string) TransferInput {
	return TransferInput{
		SenderAccountID: f.sender.ID,
		RecipientEmail:  f.recipient.Email,
		Asset:           "BTC",
		Amount:          amount,
	}
}

func TestPreviewFee(t *testing.T) {
	f := newTransferFixture(t)

	preview, err := f.uc.PreviewFee("1")
	require.NoError(t, err)
	assert.Equal(t, "0.005", preview.Fee.String())
	assert.Equal(t, "1.005", preview.Total.String())

	// Below the percentage threshold the floor applies.
	preview, err = f.uc.PreviewFee("0.001")
	require.NoError(t, err)
	assert.Equal(t, "0.0001", preview.Fee.String())

	_, err = f.uc.PreviewFee("abc")
	assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)

	_, err = f.uc.PreviewFee("0")
	assert.ErrorIs(t, err, xerrors.ErrNonPositiveAmount)
}

func TestValidateTransferOrdering(t *testing.T) {
	f := newTransferFixture(t)

	tests := []struct {
		name    string
		mutate  func(in *TransferInput)
		wantErr error
	}{
		{
			name:    "unparseable amount",
			mutate:  func(in *TransferInput) { in.Amount = "ten" },
			wantErr: xerrors.ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			mutate:  func(in *TransferInput) { in.Amount = "0" },
			wantErr: xerrors.ErrNonPositiveAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(in *TransferInput) { in.Amount = "-1" },
			wantErr: xerrors.ErrNonPositiveAmount,
		},
		{
			name:    "amount finer than ledger scale",
			mutate:  func(in *TransferInput) { in.Amount = "0.0000000000000000001" },
			wantErr: xerrors.ErrAmountTooPrecise,
		},
		{
			name:    "unsupported asset",
			mutate:  func(in *TransferInput) { in.Asset = "XRP" },
			wantErr: xerrors.ErrAssetNotSupported,
		},
		{
			name:    "insufficient including fee",
			mutate:  func(in *TransferInput) { in.Amount = "10" }, // 10 + 0.05 fee > 10
			wantErr: xerrors.ErrInsufficientBalance,
		},
		{
			name:    "no wallet at all",
			mutate:  func(in *TransferInput) { in.Asset = "ETH" },
			wantErr: xerrors.ErrInsufficientBalance,
		},
		{
			name:    "implausible email",
			mutate:  func(in *TransferInput) { in.RecipientEmail = "not-an-email" },
			wantErr: xerrors.ErrInvalidEmail,
		},
		{
			name:    "self transfer",
			mutate:  func(in *TransferInput) { in.RecipientEmail = "  ALICE@example.com " },
			wantErr: xerrors.ErrSelfTransfer,
		},
		{
			name:    "unknown recipient",
			mutate:  func(in *TransferInput) { in.RecipientEmail = "nobody@example.com" },
			wantErr: xerrors.ErrRecipientNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input("1")
			tt.mutate(&in)
			_, err := f.uc.ValidateTransfer(context.Background(), in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// The happy path resolves the recipient account.
	recipient, err := f.uc.ValidateTransfer(context.Background(), f.input("1"))
	require.NoError(t, err)
	assert.Equal(t, f.recipient.ID, recipient.ID)
}

func TestSubmitTransfer(t *testing.T) {
	f := newTransferFixture(t)

	receipt, err := f.uc.SubmitTransfer(context.Background(), f.input("1"))
	require.NoError(t, err)

	assert.Equal(t, "1", receipt.Amount.String())
	assert.Equal(t, "0.005", receipt.Fee.String())
	assert.Equal(t, "1.005", receipt.Total.String())
	assert.Equal(t, f.recipient.Email, receipt.RecipientEmail)
	assert.NotEmpty(t, receipt.Code)

	assert.Equal(t, "8.995", f.store.balanceOf(f.sender.ID, "BTC").String())
	assert.Equal(t, "1", f.store.balanceOf(f.recipient.ID, "BTC").String())
	assert.Equal(t, "0.005", f.store.balanceOf(f.feeAccount.ID, "BTC").String())

	// Conservation: what left the sender is exactly what arrived elsewhere.
	moved := decimal.RequireFromString("10").Sub(f.store.balanceOf(f.sender.ID, "BTC"))
	arrived := f.store.balanceOf(f.recipient.ID, "BTC").Add(f.store.balanceOf(f.feeAccount.ID, "BTC"))
	assert.True(t, moved.Equal(arrived))

	senderWalletID := f.store.walletIdx[walletKey(f.sender.ID, "BTC")]
	recipientWalletID := f.store.walletIdx[walletKey(f.recipient.ID, "BTC")]

	sent := f.store.txnsForWallet(senderWalletID)
	require.Len(t, sent, 1)
	assert.Equal(t, domain.TransactionKindSent, sent[0].Kind)
	require.NotNil(t, sent[0].Fee)
	assert.Equal(t, "0.005", sent[0].Fee.String())
	assert.Equal(t, f.recipient.Email, sent[0].CounterpartEmail)
	require.NotNil(t, sent[0].TransferCode)
	assert.Equal(t, receipt.Code, *sent[0].TransferCode)

	received := f.store.txnsForWallet(recipientWalletID)
	require.Len(t, received, 1)
	assert.Equal(t, domain.TransactionKindReceived, received[0].Kind)
	assert.Nil(t, received[0].Fee)
	assert.Equal(t, f.sender.Email, received[0].CounterpartEmail)
	require.NotNil(t, received[0].TransferCode)
	assert.Equal(t, receipt.Code, *received[0].TransferCode)

	assert.Equal(t, 2, f.publisher.count())
}

func TestSubmitTransferCreatesRecipientWalletOnce(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.uc.SubmitTransfer(context.Background(), f.input("1"))
	require.NoError(t, err)
	_, err = f.uc.SubmitTransfer(context.Background(), f.input("2"))
	require.NoError(t, err)

	count := 0
	for _, w := range f.store.wallets {
		if w.AccountID == f.recipient.ID && w.Asset == "BTC" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, "3", f.store.balanceOf(f.recipient.ID, "BTC").String())
}

func TestSubmitTransferExactBalance(t *testing.T) {
	f := newTransferFixture(t)
	// Balance covers amount + fee with nothing to spare.
	senderWalletID := f.store.walletIdx[walletKey(f.sender.ID, "BTC")]
	f.store.setBalance(senderWalletID, "1.005")

	_, err := f.uc.SubmitTransfer(context.Background(), f.input("1"))
	require.NoError(t, err)
	assert.True(t, f.store.balanceOf(f.sender.ID, "BTC").IsZero())
}

func TestSubmitTransferInsufficientUnderLock(t *testing.T) {
	f := newTransferFixture(t)
	senderWalletID := f.store.walletIdx[walletKey(f.sender.ID, "BTC")]

	// Validation sees 10 BTC; by lock time a competing transfer drained it.
	drained := false
	f.walletRepo.onLock = func(accountID string) {
		if accountID == f.sender.ID && !drained {
			drained = true
			f.store.setBalance(senderWalletID, "0.5")
		}
	}

	_, err := f.uc.SubmitTransfer(context.Background(), f.input("1"))
	assert.ErrorIs(t, err, xerrors.ErrInsufficientBalance)

	assert.Equal(t, "0.5", f.store.balanceOf(f.sender.ID, "BTC").String())
	assert.True(t, f.store.balanceOf(f.recipient.ID, "BTC").IsZero())
	assert.Empty(t, f.store.txns)
	assert.Zero(t, f.publisher.count())
}

func TestSubmitTransferRollsBackOnWriteFailure(t *testing.T) {
	f := newTransferFixture(t)
	f.txnRepo.failOnKind = domain.TransactionKindReceived

	_, err := f.uc.SubmitTransfer(context.Background(), f.input("1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrTransferFailed)

	// Nothing moved: the debit, both credits and the sent record all
	// rolled back with the failed write.
	assert.Equal(t, "10", f.store.balanceOf(f.sender.ID, "BTC").String())
	assert.True(t, f.store.balanceOf(f.recipient.ID, "BTC").IsZero())
	assert.True(t, f.store.balanceOf(f.feeAccount.ID, "BTC").IsZero())
	assert.Empty(t, f.store.txns)
	assert.Zero(t, f.publisher.count())
}

func TestParseAmountLedgerScale(t *testing.T) {
	// 18 decimal places is the ledger column scale.
	_, err := ParseAmount("0.000000000000000001")
	require.NoError(t, err)

	// One place finer would round to nothing at the ledger.
	_, err = ParseAmount("0.0000000000000000001")
	assert.ErrorIs(t, err, xerrors.ErrAmountTooPrecise)

	// Trailing zeros beyond the scale carry no extra precision.
	_, err = ParseAmount("1.5000000000000000000000")
	require.NoError(t, err)
}

type captureInvalidator struct {
	mu        sync.Mutex
	walletIDs []int64
}

func (c *captureInvalidator) InvalidateWalletCache(ctx context.Context, walletID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.walletIDs = append(c.walletIDs, walletID)
}

func TestSubmitTransferInvalidatesAllTouchedLedgers(t *testing.T) {
	f := newTransferFixture(t)
	invalidator := &captureInvalidator{}
	uc := NewTransferUsecase(
		&memAccountRepo{store: f.store},
		f.walletRepo,
		&memTransferRepo{store: f.store},
		f.txnRepo,
		&memTxManager{store: f.store},
		invalidator,
		f.publisher,
		nil,
		5*time.Second,
		zap.NewNop(),
	)

	_, err := uc.SubmitTransfer(context.Background(), f.input("1"))
	require.NoError(t, err)

	// Sender, recipient and the fee wallet all wrote a ledger record, so
	// all three caches must be dropped.
	senderWalletID := f.store.walletIdx[walletKey(f.sender.ID, "BTC")]
	recipientWalletID := f.store.walletIdx[walletKey(f.recipient.ID, "BTC")]
	feeWalletID := f.store.walletIdx[walletKey(f.feeAccount.ID, "BTC")]
	assert.ElementsMatch(t,
		[]int64{senderWalletID, recipientWalletID, feeWalletID},
		invalidator.walletIDs,
	)
}

func TestSubmitTransferRecipientWalletRace(t *testing.T) {
	f := newTransferFixture(t)

	// Another first transfer to the same recipient inserts the wallet
	// between the missing-wallet lookup and this transfer's insert.
	f.walletRepo.onCreate = func(accountID, asset string) {
		if accountID == f.recipient.ID && f.store.balanceOf(f.recipient.ID, "BTC").IsZero() {
			if _, ok := f.store.walletIdx[walletKey(f.recipient.ID, "BTC")]; !ok {
				f.store.addWallet(f.recipient.ID, "BTC", "0")
			}
		}
	}

	receipt, err := f.uc.SubmitTransfer(context.Background(), f.input("1"))
	require.NoError(t, err)
	require.NotNil(t, receipt)

	count := 0
	for _, w := range f.store.wallets {
		if w.AccountID == f.recipient.ID && w.Asset == "BTC" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, "1", f.store.balanceOf(f.recipient.ID, "BTC").String())
}

func TestSubmitTransferIdempotentReplay(t *testing.T) {
	f := newTransferFixture(t)
	key := uuid.NewString()

	in := f.input("1")
	in.IdempotencyKey = &key

	first, err := f.uc.SubmitTransfer(context.Background(), in)
	require.NoError(t, err)

	second, err := f.uc.SubmitTransfer(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
	// Funds moved exactly once.
	assert.Equal(t, "8.995", f.store.balanceOf(f.sender.ID, "BTC").String())
	assert.Equal(t, "1", f.store.balanceOf(f.recipient.ID, "BTC").String())
}
