package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/repository"
	"github.com/KelechiEze/paykoin-sub000/internal/usecase"
	"github.com/KelechiEze/paykoin-sub000/pkg/id"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

// SystemSeeder makes sure the platform fee account and its per-asset
// wallets exist before the first transfer routes a fee into them.
// Idempotent; safe to run on every boot.
type SystemSeeder struct {
	accountRepo repository.AccountRepository
	walletRepo  repository.WalletRepository
	logger      *zap.Logger
}

func NewSystemSeeder(
	accountRepo repository.AccountRepository,
	walletRepo repository.WalletRepository,
	logger *zap.Logger,
) *SystemSeeder {
	return &SystemSeeder{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		logger:      logger,
	}
}

func (s *SystemSeeder) SeedSystem(ctx context.Context) error {
	feeAccount, err := s.accountRepo.GetByEmail(ctx, usecase.SystemFeeEmail)
	if errors.Is(err, xerrors.ErrAccountNotFound) {
		feeAccount = &domain.Account{
			ID:          uuid.NewString(),
			Email:       usecase.SystemFeeEmail,
			DisplayName: "Platform Fees",
		}
		err = s.accountRepo.Create(ctx, feeAccount)
		if errors.Is(err, xerrors.ErrEmailInUse) {
			// Another instance seeded first; re-read.
			feeAccount, err = s.accountRepo.GetByEmail(ctx, usecase.SystemFeeEmail)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to ensure fee account: %w", err)
	}

	for _, asset := range domain.SupportedAssets {
		_, err := s.walletRepo.Create(ctx, &domain.WalletCreate{
			AccountID: feeAccount.ID,
			Asset:     asset.Symbol,
			Name:      asset.Name + " Fees",
			Address:   id.NewDepositAddress(asset.AddressPrefix),
			Color:     asset.Color,
		})
		if err != nil && !errors.Is(err, xerrors.ErrWalletExists) {
			return fmt.Errorf("failed to ensure fee wallet for %s: %w", asset.Symbol, err)
		}
	}

	s.logger.Info("system seeding completed", zap.String("fee_account_id", feeAccount.ID))
	return nil
}
