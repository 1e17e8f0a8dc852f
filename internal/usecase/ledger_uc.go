package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/pub"
	"github.com/KelechiEze/paykoin-sub000/internal/repository"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

const feedPageSize = 50

type LedgerUsecase struct {
	txnRepo     repository.TransactionRepository
	walletRepo  repository.WalletRepository
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewLedgerUsecase(
	txnRepo repository.TransactionRepository,
	walletRepo repository.WalletRepository,
	redisClient *redis.Client,
	logger *zap.Logger,
) *LedgerUsecase {
	return &LedgerUsecase{
		txnRepo:     txnRepo,
		walletRepo:  walletRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// History returns a wallet's ledger page, most-recent-first, with caching.
// Sentinel rows never appear here; the repository filters them.
func (uc *LedgerUsecase) History(ctx context.Context, walletID int64, limit, offset int) ([]*domain.Transaction, int, error) {
	if limit <= 0 {
		limit = feedPageSize
	}
	if limit > 1000 {
		limit = 1000
	}

	cacheKey := fmt.Sprintf("ledger:wallet:%d:limit_%d:offset_%d", walletID, limit, offset)

	if val, err := uc.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		var cached struct {
			Transactions []*domain.Transaction `json:"transactions"`
			Total        int                   `json:"total"`
		}
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			return cached.Transactions, cached.Total, nil
		}
	}

	txns, err := uc.txnRepo.ListByWallet(ctx, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read ledger: %w", err)
	}
	txns = normalizeLedgerPage(txns)
	total, err := uc.txnRepo.CountByWallet(ctx, walletID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger: %w", err)
	}

	payload := struct {
		Transactions []*domain.Transaction `json:"transactions"`
		Total        int                   `json:"total"`
	}{txns, total}
	if data, err := json.Marshal(payload); err == nil {
		_ = uc.redisClient.Set(ctx, cacheKey, data, time.Minute).Err()
	}

	return txns, total, nil
}

// normalizeLedgerPage enforces the read contract on whatever the store
// handed back: sentinel placeholder rows never surface and records are
// most-recent-first, ties broken by id.
func normalizeLedgerPage(txns []*domain.Transaction) []*domain.Transaction {
	out := txns[:0]
	for _, txn := range txns {
		if txn.ID == domain.SentinelTransactionID {
			continue
		}
		out = append(out, txn)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// InvalidateWalletCache drops every cached ledger page for a wallet.
func (uc *LedgerUsecase) InvalidateWalletCache(ctx context.Context, walletID int64) {
	pattern := fmt.Sprintf("ledger:wallet:%d:*", walletID)

	iter := uc.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := uc.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			uc.logger.Warn("failed to drop ledger cache key",
				zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		uc.logger.Warn("ledger cache invalidation scan failed", zap.Error(err))
	}
}

// Subscribe delivers the current ledger page for (account, asset) and then a
// fresh page on every committed transaction touching that wallet. Updates
// are re-read from the database, so whatever the feed shows is the
// authoritative committed state, never an optimistic client patch. The
// returned func stops the subscription.
func (uc *LedgerUsecase) Subscribe(ctx context.Context, accountID, assetSymbol string, onUpdate func([]*domain.Transaction)) (func() error, error) {
	asset, err := domain.LookupAsset(assetSymbol)
	if err != nil {
		return nil, err
	}

	pubsub := uc.redisClient.Subscribe(ctx, pub.FeedChannel(accountID, asset.Symbol))

	onUpdate(uc.snapshot(ctx, accountID, asset.Symbol))

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				onUpdate(uc.snapshot(ctx, accountID, asset.Symbol))
			}
		}
	}()

	return pubsub.Close, nil
}

// snapshot is the authoritative read behind the live feed. A wallet that
// does not exist yet simply has an empty ledger.
func (uc *LedgerUsecase) snapshot(ctx context.Context, accountID, asset string) []*domain.Transaction {
	wallet, err := uc.walletRepo.GetByAccountAsset(ctx, accountID, asset)
	if err != nil {
		if !errors.Is(err, xerrors.ErrWalletNotFound) {
			uc.logger.Warn("feed snapshot failed", zap.String("account_id", accountID), zap.Error(err))
		}
		return []*domain.Transaction{}
	}

	txns, _, err := uc.History(ctx, wallet.ID, feedPageSize, 0)
	if err != nil {
		uc.logger.Warn("feed snapshot failed", zap.Int64("wallet_id", wallet.ID), zap.Error(err))
		return []*domain.Transaction{}
	}
	if txns == nil {
		txns = []*domain.Transaction{}
	}
	return txns
}
