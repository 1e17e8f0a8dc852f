package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/pub"
	"github.com/KelechiEze/paykoin-sub000/internal/repository"
	"github.com/KelechiEze/paykoin-sub000/pkg/id"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

// SystemFeeEmail owns the platform wallets that collect transfer fees.
// Seeded at boot; fees are routed here rather than silently discarded.
const SystemFeeEmail = "fees@paykoin.internal"

// TransferInput is what the UI submits.
type TransferInput struct {
	SenderAccountID string
	RecipientEmail  string
	Asset           string
	Amount          string // raw user input, parsed during validation
	Note            string
	IdempotencyKey  *string
}

// LedgerInvalidator drops cached ledger pages after a committed write.
type LedgerInvalidator interface {
	InvalidateWalletCache(ctx context.Context, walletID int64)
}

type TransferUsecase struct {
	accountRepo  repository.AccountRepository
	walletRepo   repository.WalletRepository
	transferRepo repository.TransferRepository
	txnRepo      repository.TransactionRepository
	txManager    repository.TxManager
	ledgerUC     LedgerInvalidator
	publisher    pub.Publisher
	feeRule      *domain.TransferFeeRule
	timeout      time.Duration
	logger       *zap.Logger
}

func NewTransferUsecase(
	accountRepo repository.AccountRepository,
	walletRepo repository.WalletRepository,
	transferRepo repository.TransferRepository,
	txnRepo repository.TransactionRepository,
	txManager repository.TxManager,
	ledgerUC LedgerInvalidator,
	publisher pub.Publisher,
	feeRule *domain.TransferFeeRule,
	timeout time.Duration,
	logger *zap.Logger,
) *TransferUsecase {
	if feeRule == nil {
		feeRule = domain.DefaultTransferFeeRule()
	}
	return &TransferUsecase{
		accountRepo:  accountRepo,
		walletRepo:   walletRepo,
		transferRepo: transferRepo,
		txnRepo:      txnRepo,
		txManager:    txManager,
		ledgerUC:     ledgerUC,
		publisher:    publisher,
		feeRule:      feeRule,
		timeout:      timeout,
		logger:       logger,
	}
}

// maxAmountScale matches the numeric(30,18) ledger columns. Anything finer
// would silently round away at the database.
const maxAmountScale = 18

// ParseAmount parses user-entered amounts. Anything decimal cannot parse is
// an invalid amount; anything finer than the ledger scale is rejected rather
// than rounded.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, xerrors.ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(maxAmountScale)) {
		return decimal.Zero, xerrors.ErrAmountTooPrecise
	}
	return amount, nil
}

// PreviewFee computes the fee and total deduction for a prospective amount.
func (uc *TransferUsecase) PreviewFee(amountStr string) (*domain.FeePreview, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, xerrors.ErrNonPositiveAmount
	}
	preview := uc.feeRule.Preview(amount)
	return &preview, nil
}

// ValidateTransfer runs the pre-submit checks in order, short-circuiting on
// the first failure. Read-only; the balance check is repeated under lock at
// execution time since this result can go stale.
func (uc *TransferUsecase) ValidateTransfer(ctx context.Context, in TransferInput) (*domain.Account, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, xerrors.ErrNonPositiveAmount
	}

	asset, err := domain.LookupAsset(in.Asset)
	if err != nil {
		return nil, err
	}

	total := amount.Add(uc.feeRule.Fee(amount))
	balance := decimal.Zero
	if wallet, err := uc.walletRepo.GetByAccountAsset(ctx, in.SenderAccountID, asset.Symbol); err == nil {
		balance = wallet.Balance
	} else if !errors.Is(err, xerrors.ErrWalletNotFound) {
		return nil, err
	}
	if balance.LessThan(total) {
		return nil, insufficientBalance(total, balance, asset.Symbol)
	}

	recipientEmail := domain.NormalizeEmail(in.RecipientEmail)
	if !domain.IsPlausibleEmail(recipientEmail) {
		return nil, xerrors.ErrInvalidEmail
	}

	sender, err := uc.accountRepo.GetByID(ctx, in.SenderAccountID)
	if err != nil {
		return nil, err
	}
	if recipientEmail == sender.Email {
		return nil, xerrors.ErrSelfTransfer
	}

	recipient, err := uc.accountRepo.GetByEmail(ctx, recipientEmail)
	if err != nil {
		if errors.Is(err, xerrors.ErrAccountNotFound) {
			return nil, xerrors.ErrRecipientNotFound
		}
		return nil, err
	}
	return recipient, nil
}

// SubmitTransfer validates and executes an atomic transfer: debit sender by
// amount+fee, credit recipient by amount, credit the platform fee wallet by
// fee, and append the sent/received ledger records. All of it commits
// together or not at all.
func (uc *TransferUsecase) SubmitTransfer(ctx context.Context, in TransferInput) (*domain.TransferReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	// A retried request with the same key returns the original receipt.
	if in.IdempotencyKey != nil {
		existing, err := uc.transferRepo.GetByIdempotencyKey(ctx, *in.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, xerrors.ErrNotFound) {
			return nil, execError(err)
		}
	}

	recipient, err := uc.ValidateTransfer(ctx, in)
	if err != nil {
		return nil, err
	}

	sender, err := uc.accountRepo.GetByID(ctx, in.SenderAccountID)
	if err != nil {
		return nil, execError(err)
	}
	feeAccount, err := uc.accountRepo.GetByEmail(ctx, SystemFeeEmail)
	if err != nil {
		return nil, execError(err)
	}

	asset, err := domain.LookupAsset(in.Asset)
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	fee := uc.feeRule.Fee(amount)
	total := amount.Add(fee)

	receipt := &domain.TransferReceipt{
		Code:               id.NewReceiptCode("trf"),
		SenderAccountID:    sender.ID,
		RecipientAccountID: recipient.ID,
		RecipientEmail:     recipient.Email,
		Asset:              asset.Symbol,
		Amount:             amount,
		Fee:                fee,
		Total:              total,
		Note:               in.Note,
	}

	var touchedWallets []int64
	err = uc.txManager.WithinTx(ctx, func(ctx context.Context) error {
		wallets, err := uc.lockWallets(ctx, asset, sender.ID, recipient.ID, feeAccount.ID)
		if err != nil {
			return err
		}
		senderWallet := wallets[sender.ID]
		recipientWallet := wallets[recipient.ID]
		feeWallet := wallets[feeAccount.ID]
		touchedWallets = []int64{senderWallet.ID, recipientWallet.ID, feeWallet.ID}

		// Re-check under lock: validation may be stale by now and a
		// concurrent transfer could have drained this wallet.
		if !senderWallet.HasSufficientFunds(total) {
			return insufficientBalance(total, senderWallet.Balance, asset.Symbol)
		}

		if err := senderWallet.Debit(total); err != nil {
			return err
		}
		if err := recipientWallet.Credit(amount); err != nil {
			return err
		}
		if err := feeWallet.Credit(fee); err != nil {
			return err
		}

		for _, w := range []*domain.Wallet{senderWallet, recipientWallet, feeWallet} {
			if err := uc.walletRepo.UpdateBalance(ctx, w.ID, w.Balance); err != nil {
				return err
			}
		}

		if err := uc.transferRepo.Create(ctx, receipt, in.IdempotencyKey); err != nil {
			return err
		}

		// Two independent ledger records, one per side, linked by the
		// transfer code. Timestamps come from the transaction clock so
		// both legs agree.
		sent := &domain.Transaction{
			ID:               id.NewReceiptCode("txn"),
			WalletID:         senderWallet.ID,
			Kind:             domain.TransactionKindSent,
			Amount:           amount,
			Fee:              &fee,
			CounterpartEmail: recipient.Email,
			Note:             in.Note,
			TransferCode:     &receipt.Code,
			Status:           domain.TransactionStatusCompleted,
		}
		received := &domain.Transaction{
			ID:               id.NewReceiptCode("txn"),
			WalletID:         recipientWallet.ID,
			Kind:             domain.TransactionKindReceived,
			Amount:           amount,
			CounterpartEmail: sender.Email,
			Note:             in.Note,
			TransferCode:     &receipt.Code,
			Status:           domain.TransactionStatusCompleted,
		}
		feeRecord := &domain.Transaction{
			ID:               id.NewReceiptCode("txn"),
			WalletID:         feeWallet.ID,
			Kind:             domain.TransactionKindReceived,
			Amount:           fee,
			CounterpartEmail: sender.Email,
			Note:             "transfer fee",
			TransferCode:     &receipt.Code,
			Status:           domain.TransactionStatusCompleted,
		}
		for _, txn := range []*domain.Transaction{sent, received, feeRecord} {
			if err := uc.txnRepo.Append(ctx, txn); err != nil {
				return err
			}
		}
		receipt.CreatedAt = sent.CreatedAt
		return nil
	})
	if err != nil {
		switch {
		case xerrors.IsValidation(err),
			errors.Is(err, xerrors.ErrDuplicateIdempotencyKey):
			return nil, err
		default:
			uc.logger.Error("transfer aborted, rolled back",
				zap.String("code", receipt.Code), zap.Error(err))
			return nil, execError(err)
		}
	}

	uc.logger.Info("transfer completed",
		zap.String("code", receipt.Code),
		zap.String("asset", asset.Symbol),
		zap.String("amount", amount.String()),
		zap.String("fee", fee.String()),
	)

	for _, walletID := range touchedWallets {
		uc.ledgerUC.InvalidateWalletCache(ctx, walletID)
	}
	for _, side := range []struct {
		accountID   string
		counterpart string
		amountStr   string
		feeStr      string
	}{
		{sender.ID, recipient.Email, amount.String(), fee.String()},
		{recipient.ID, sender.Email, amount.String(), ""},
	} {
		uc.publisher.PublishTransactionEvent(ctx, &pub.TransactionEvent{
			EventType:        "transfer.completed",
			TransferCode:     receipt.Code,
			AccountID:        side.accountID,
			CounterpartEmail: side.counterpart,
			Asset:            asset.Symbol,
			Amount:           side.amountStr,
			Fee:              side.feeStr,
		})
	}
	return receipt, nil
}

// lockWallets locks the participants' wallets in deterministic account-id
// order so two crossing transfers cannot deadlock. Wallets that do not exist
// yet (recipient's, fee wallet) are created with a zero balance; the fresh
// row is owned by this transaction until commit.
func (uc *TransferUsecase) lockWallets(ctx context.Context, asset *domain.Asset, accountIDs ...string) (map[string]*domain.Wallet, error) {
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)

	wallets := make(map[string]*domain.Wallet, len(ids))
	for _, accountID := range ids {
		if _, ok := wallets[accountID]; ok {
			continue
		}
		wallet, err := uc.walletRepo.GetByAccountAssetForUpdate(ctx, accountID, asset.Symbol)
		if errors.Is(err, xerrors.ErrWalletNotFound) {
			wallet, err = uc.walletRepo.Create(ctx, &domain.WalletCreate{
				AccountID: accountID,
				Asset:     asset.Symbol,
				Name:      asset.Name,
				Address:   id.NewDepositAddress(asset.AddressPrefix),
				Color:     asset.Color,
			})
			// A concurrent transfer may have created the row between the
			// lookup and the insert; lock whichever insert won.
			if errors.Is(err, xerrors.ErrWalletExists) {
				wallet, err = uc.walletRepo.GetByAccountAssetForUpdate(ctx, accountID, asset.Symbol)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock wallet for account %s: %w", accountID, err)
		}
		wallets[accountID] = wallet
	}
	return wallets, nil
}

func insufficientBalance(required, available decimal.Decimal, asset string) error {
	return fmt.Errorf("%w: requires %s %s (amount + fee), available %s %s",
		xerrors.ErrInsufficientBalance, required.String(), asset, available.String(), asset)
}

// execError wraps backend failures as the retryable execution error. The
// atomic unit guarantees no partial effect, so retrying is safe.
func execError(err error) error {
	return fmt.Errorf("%w: %v", xerrors.ErrTransferFailed, err)
}
