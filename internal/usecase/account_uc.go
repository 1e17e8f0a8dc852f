package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/repository"
	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

type AccountUsecase struct {
	accountRepo repository.AccountRepository
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewAccountUsecase(accountRepo repository.AccountRepository, redisClient *redis.Client, logger *zap.Logger) *AccountUsecase {
	return &AccountUsecase{
		accountRepo: accountRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Signup registers an account. Emails are stored normalized so that the
// unique index enforces one account per address regardless of case.
func (uc *AccountUsecase) Signup(ctx context.Context, email, displayName string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, xerrors.ErrEmailRequired
	}
	if !domain.IsPlausibleEmail(email) {
		return nil, xerrors.ErrInvalidEmail
	}

	account := &domain.Account{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
	}
	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.logger.Info("account created",
		zap.String("account_id", account.ID),
		zap.String("email", account.Email),
	)
	return account, nil
}

// GetByID retrieves an account with caching.
func (uc *AccountUsecase) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	cacheKey := fmt.Sprintf("account:id:%s", id)

	if val, err := uc.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		var account domain.Account
		if jsonErr := json.Unmarshal([]byte(val), &account); jsonErr == nil {
			return &account, nil
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(account); err == nil {
		_ = uc.redisClient.Set(ctx, cacheKey, data, 5*time.Minute).Err()
	}

	return account, nil
}

// ResolveRecipient maps a human-entered email to the account it belongs to.
// Lookup is exact on the normalized form; no match means the recipient does
// not exist. No side effects.
func (uc *AccountUsecase) ResolveRecipient(ctx context.Context, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if !domain.IsPlausibleEmail(email) {
		return nil, xerrors.ErrInvalidEmail
	}

	account, err := uc.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrAccountNotFound) {
			return nil, xerrors.ErrRecipientNotFound
		}
		return nil, err
	}
	return account, nil
}
