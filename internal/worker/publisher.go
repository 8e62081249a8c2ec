package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/go-bookstore-api/internal/model"
)

// EventChannel is the publishing side of an AMQP channel.
type EventChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher puts order events on the order events queue.
type Publisher struct {
	mu      sync.Mutex
	channel EventChannel
}

func NewPublisher(ch EventChannel) *Publisher {
	return &Publisher{channel: ch}
}

func (p *Publisher) Publish(ctx context.Context, event model.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, "", orderEventsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID.String(),
		Timestamp:    event.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
