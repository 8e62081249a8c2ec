package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
)

// DeliverySource is the consuming side of an AMQP channel.
type DeliverySource interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// AuditWorker appends every order event to the status audit trail. It never
// touches order state.
type AuditWorker struct {
	channel     DeliverySource
	auditRepo   repository.AuditRepository
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
	stopped     chan struct{}
}

func NewAuditWorker(
	ch DeliverySource,
	auditRepo repository.AuditRepository,
	redisClient *redis.Client,
	log *slog.Logger,
) *AuditWorker {
	return &AuditWorker{
		channel:     ch,
		auditRepo:   auditRepo,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

func (w *AuditWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	w.stopped = make(chan struct{})
	go func() {
		defer close(w.stopped)
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("audit worker started")
	return nil
}

// Stop ends the consume loop and waits for the message in flight, if any.
func (w *AuditWorker) Stop() {
	close(w.done)
	if w.stopped != nil {
		<-w.stopped
	}
}

func idempotencyKey(eventID uuid.UUID) string {
	return "order_event:" + eventID.String()
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event model.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.EventID == uuid.Nil {
		w.log.Error("malformed order event", "error", err, "message_id", msg.MessageId)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("event_id", event.EventID, "order_id", event.OrderID, "status", event.Status)

	key := idempotencyKey(event.EventID)
	exists, err := w.redisClient.Exists(ctx, key).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("order event already recorded, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.auditRepo.Record(ctx, event); err != nil {
		log.Error("record order event", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := w.redisClient.Set(ctx, key, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order event recorded")
}
