package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/pub"
	"github.com/KelechiEze/paykoin-sub000/internal/repository"
	"github.com/KelechiEze/paykoin-sub000/pkg/id"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

// PriceProvider is the display-only market data collaborator. Failures here
// degrade to zero values and must never reach the transfer path.
type PriceProvider interface {
	GetPrices(ctx context.Context) (map[string]domain.AssetPrice, error)
}

// WalletView is a wallet decorated with display-layer market data.
type WalletView struct {
	*domain.Wallet
	PriceUSD float64 `json:"price_usd"`
	ValueUSD float64 `json:"value_usd"`
}

type WalletUsecase struct {
	walletRepo repository.WalletRepository
	txnRepo    repository.TransactionRepository
	txManager  repository.TxManager
	ledgerUC   LedgerInvalidator
	prices     PriceProvider
	publisher  pub.Publisher
	logger     *zap.Logger
}

func NewWalletUsecase(
	walletRepo repository.WalletRepository,
	txnRepo repository.TransactionRepository,
	txManager repository.TxManager,
	ledgerUC LedgerInvalidator,
	prices PriceProvider,
	publisher pub.Publisher,
	logger *zap.Logger,
) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		txManager:  txManager,
		ledgerUC:   ledgerUC,
		prices:     prices,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateWallet opens a wallet for (account, asset) with a zero balance and
// a freshly generated cosmetic receiving address.
func (uc *WalletUsecase) CreateWallet(ctx context.Context, accountID, assetSymbol, name string) (*domain.Wallet, error) {
	asset, err := domain.LookupAsset(assetSymbol)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = asset.Name
	}

	wallet, err := uc.walletRepo.Create(ctx, &domain.WalletCreate{
		AccountID: accountID,
		Asset:     asset.Symbol,
		Name:      name,
		Address:   id.NewDepositAddress(asset.AddressPrefix),
		Color:     asset.Color,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("wallet created",
		zap.String("account_id", accountID),
		zap.String("asset", asset.Symbol),
		zap.Int64("wallet_id", wallet.ID),
	)
	return wallet, nil
}

// GetBalance returns the current balance for (account, asset), defaulting to
// zero when no wallet exists yet.
func (uc *WalletUsecase) GetBalance(ctx context.Context, accountID, assetSymbol string) (decimal.Decimal, error) {
	asset, err := domain.LookupAsset(assetSymbol)
	if err != nil {
		return decimal.Zero, err
	}
	wallet, err := uc.walletRepo.GetByAccountAsset(ctx, accountID, asset.Symbol)
	if err != nil {
		if errors.Is(err, xerrors.ErrWalletNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// ListWallets returns the account's wallets annotated with USD prices. Price
// feed errors leave the annotations at zero; they never fail the listing.
func (uc *WalletUsecase) ListWallets(ctx context.Context, accountID string) ([]*WalletView, error) {
	wallets, err := uc.walletRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	prices, err := uc.prices.GetPrices(ctx)
	if err != nil {
		uc.logger.Warn("price feed unavailable, rendering wallets without USD values", zap.Error(err))
		prices = nil
	}

	views := make([]*WalletView, 0, len(wallets))
	for _, w := range wallets {
		view := &WalletView{Wallet: w}
		if p, ok := prices[w.Asset]; ok {
			view.PriceUSD = p.USD
			balance, _ := w.Balance.Float64()
			view.ValueUSD = balance * p.USD
		}
		views = append(views, view)
	}
	return views, nil
}

// Deposit credits the wallet and appends a completed deposit record, as one
// atomic unit. This is the manual top-up flow.
func (uc *WalletUsecase) Deposit(ctx context.Context, accountID, assetSymbol, amountStr, note string) (*domain.Transaction, error) {
	return uc.adjust(ctx, accountID, assetSymbol, amountStr, note, domain.TransactionKindDeposit)
}

// Withdraw debits the wallet and appends a completed withdrawal record. The
// balance may not go negative.
func (uc *WalletUsecase) Withdraw(ctx context.Context, accountID, assetSymbol, amountStr, note string) (*domain.Transaction, error) {
	return uc.adjust(ctx, accountID, assetSymbol, amountStr, note, domain.TransactionKindWithdrawal)
}

func (uc *WalletUsecase) adjust(ctx context.Context, accountID, assetSymbol, amountStr, note string, kind domain.TransactionKind) (*domain.Transaction, error) {
	asset, err := domain.LookupAsset(assetSymbol)
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:     id.NewReceiptCode("txn"),
		Kind:   kind,
		Amount: amount,
		Note:   note,
		Status: domain.TransactionStatusCompleted,
	}

	err = uc.txManager.WithinTx(ctx, func(ctx context.Context) error {
		wallet, err := uc.walletRepo.GetByAccountAssetForUpdate(ctx, accountID, asset.Symbol)
		if err != nil {
			return err
		}

		if kind == domain.TransactionKindWithdrawal {
			err = wallet.Debit(amount)
		} else {
			err = wallet.Credit(amount)
		}
		if err != nil {
			return err
		}

		if err := uc.walletRepo.UpdateBalance(ctx, wallet.ID, wallet.Balance); err != nil {
			return err
		}
		txn.WalletID = wallet.ID
		return uc.txnRepo.Append(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	uc.ledgerUC.InvalidateWalletCache(ctx, txn.WalletID)
	uc.publisher.PublishTransactionEvent(ctx, &pub.TransactionEvent{
		EventType: fmt.Sprintf("%s.completed", kind),
		AccountID: accountID,
		Asset:     asset.Symbol,
		Amount:    amount.String(),
	})
	return txn, nil
}
