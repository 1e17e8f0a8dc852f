package hrest

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/domain"
	"github.com/KelechiEze/paykoin-sub000/internal/usecase"
	"github.com/KelechiEze/paykoin-sub000/pkg/response"
)

type FeedWSHandler struct {
	ledgerUC *usecase.LedgerUsecase
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewFeedWSHandler(ledgerUC *usecase.LedgerUsecase, logger *zap.Logger) *FeedWSHandler {
	return &FeedWSHandler{
		ledgerUC: ledgerUC,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Stream upgrades to a websocket and pushes the wallet's ledger page on
// connect and again after every committed transaction. Closing the socket
// or cancelling the request ends the subscription.
func (h *FeedWSHandler) Stream(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	asset := chi.URLParam(r, "asset")

	if _, err := domain.LookupAsset(asset); err != nil {
		response.DomainError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writes come from the initial push and the subscription goroutine.
	var writeMu sync.Mutex
	onUpdate := func(txns []*domain.Transaction) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(map[string]any{"transactions": txns}); err != nil {
			cancel()
		}
	}

	unsubscribe, err := h.ledgerUC.Subscribe(ctx, accountID, asset, onUpdate)
	if err != nil {
		h.logger.Warn("feed subscription failed",
			zap.String("account_id", accountID), zap.String("asset", asset), zap.Error(err))
		return
	}
	defer unsubscribe()

	// Drain client frames just to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
