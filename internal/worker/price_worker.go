package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/service"
)

// PriceRefresher periodically refreshes market quotes so wallet listings
// and cached 24h changes stay roughly current.
type PriceRefresher struct {
	priceService *service.PriceService
	interval     time.Duration
	logger       *zap.Logger
	stopChan     chan struct{}
}

func NewPriceRefresher(priceService *service.PriceService, interval time.Duration, logger *zap.Logger) *PriceRefresher {
	return &PriceRefresher{
		priceService: priceService,
		interval:     interval,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start runs the refresh loop until Stop is called or ctx is cancelled.
func (pr *PriceRefresher) Start(ctx context.Context) {
	pr.logger.Info("starting price refresh worker", zap.Duration("interval", pr.interval))

	// Prime the cache once at boot so the first wallet listing has quotes.
	if err := pr.priceService.Refresh(ctx); err != nil {
		pr.logger.Warn("initial price refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(pr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := pr.priceService.Refresh(ctx); err != nil {
				pr.logger.Warn("price refresh failed", zap.Error(err))
			}

		case <-pr.stopChan:
			pr.logger.Info("stopping price refresh worker")
			return

		case <-ctx.Done():
			pr.logger.Info("context cancelled, stopping price refresh worker")
			return
		}
	}
}

// Stop stops the worker.
func (pr *PriceRefresher) Stop() {
	close(pr.stopChan)
}
