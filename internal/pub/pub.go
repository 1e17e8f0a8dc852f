package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// FeedChannel is the redis pub/sub channel carrying live ledger updates for
// one (account, asset) pair. The websocket feed subscribes to it.
func FeedChannel(accountID, asset string) string {
	return fmt.Sprintf("txfeed:%s:%s", accountID, asset)
}

type TransactionEvent struct {
	EventType        string    `json:"event_type"` // transfer.completed, deposit.completed, withdrawal.completed
	TransferCode     string    `json:"transfer_code,omitempty"`
	AccountID        string    `json:"account_id"`
	CounterpartEmail string    `json:"counterpart_email,omitempty"`
	Asset            string    `json:"asset"`
	Amount           string    `json:"amount"`
	Fee              string    `json:"fee,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Publisher fans transaction events out to kafka (durable stream) and to the
// per-wallet redis channels (live UI feed). Publishing happens after commit
// and must never fail the transfer, so errors are logged and swallowed.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, event *TransactionEvent)
}

type eventPublisher struct {
	writer *kafka.Writer
	rdb    *redis.Client
	logger *zap.Logger
}

func NewEventPublisher(brokers []string, topic string, rdb *redis.Client, logger *zap.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	return &eventPublisher{writer: writer, rdb: rdb, logger: logger}
}

func (p *eventPublisher) PublishTransactionEvent(ctx context.Context, event *TransactionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal transaction event", zap.Error(err))
		return
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountID),
		Value: payload,
	}); err != nil {
		p.logger.Error("failed to publish transaction event to kafka",
			zap.String("event_type", event.EventType), zap.Error(err))
	}

	channel := FeedChannel(event.AccountID, event.Asset)
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.Error("failed to publish transaction event to feed",
			zap.String("channel", channel), zap.Error(err))
	}
}
