package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/repository"
)

const priceCacheKey = "prices:usd"

// PriceService polls the external market data API and keeps the last
// successful quote set in redis. It is display-layer only: any failure
// degrades to the last-known values and never propagates to transfers.
type PriceService struct {
	client      *http.Client
	baseURL     string
	redisClient *redis.Client
	walletRepo  repository.WalletRepository
	logger      *zap.Logger
}

func NewPriceService(
	baseURL string,
	requestTimeout time.Duration,
	redisClient *redis.Client,
	walletRepo repository.WalletRepository,
	logger *zap.Logger,
) *PriceService {
	return &PriceService{
		client:      &http.Client{Timeout: requestTimeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		redisClient: redisClient,
		walletRepo:  walletRepo,
		logger:      logger,
	}
}

// GetPrices returns quotes for all supported assets, preferring a live
// fetch and falling back to the cached last-known set.
func (s *PriceService) GetPrices(ctx context.Context) (map[string]domain.AssetPrice, error) {
	prices, err := s.fetch(ctx)
	if err == nil {
		s.cache(ctx, prices)
		return prices, nil
	}
	s.logger.Warn("price fetch failed, trying last-known quotes", zap.Error(err))

	if cached, cacheErr := s.cached(ctx); cacheErr == nil {
		return cached, nil
	}
	return nil, err
}

// Refresh fetches quotes, caches them and pushes the 24h change onto the
// wallets' cached display field. Called by the refresh worker.
func (s *PriceService) Refresh(ctx context.Context) error {
	prices, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.cache(ctx, prices)

	for symbol, price := range prices {
		if err := s.walletRepo.UpdateChange24h(ctx, symbol, price.Change24h); err != nil {
			s.logger.Warn("failed to update cached 24h change",
				zap.String("asset", symbol), zap.Error(err))
		}
	}
	return nil
}

func (s *PriceService) fetch(ctx context.Context) (map[string]domain.AssetPrice, error) {
	feedIDs := make([]string, 0, len(domain.SupportedAssets))
	bySymbol := make(map[string]string, len(domain.SupportedAssets))
	for _, asset := range domain.SupportedAssets {
		feedIDs = append(feedIDs, asset.PriceFeedID)
		bySymbol[asset.PriceFeedID] = asset.Symbol
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		s.baseURL, url.QueryEscape(strings.Join(feedIDs, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var raw map[string]struct {
		USD       float64 `json:"usd"`
		USDChange float64 `json:"usd_24h_change"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode price feed response: %w", err)
	}

	prices := make(map[string]domain.AssetPrice, len(raw))
	for feedID, quote := range raw {
		symbol, ok := bySymbol[feedID]
		if !ok {
			continue
		}
		prices[symbol] = domain.AssetPrice{USD: quote.USD, Change24h: quote.USDChange}
	}
	return prices, nil
}

// cache stores quotes without a TTL: stale quotes beat no quotes for a
// display-only feed.
func (s *PriceService) cache(ctx context.Context, prices map[string]domain.AssetPrice) {
	data, err := json.Marshal(prices)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, priceCacheKey, data, 0).Err(); err != nil {
		s.logger.Warn("failed to cache prices", zap.Error(err))
	}
}

func (s *PriceService) cached(ctx context.Context) (map[string]domain.AssetPrice, error) {
	val, err := s.redisClient.Get(ctx, priceCacheKey).Result()
	if err != nil {
		return nil, err
	}
	var prices map[string]domain.AssetPrice
	if err := json.Unmarshal([]byte(val), &prices); err != nil {
		return nil, err
	}
	return prices, nil
}
