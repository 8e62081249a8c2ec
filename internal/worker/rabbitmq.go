package worker

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	orderEventsQueue = "order_events"
	dlxExchange      = "order_events.dlx"
	dlqQueueName     = "order_events.dlq"
	idempotencyTTL   = 24 * time.Hour
)

// TopologyChannel is the declaring side of an AMQP channel.
type TopologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
}

// queueSpec is one durable queue of the order event flow.
type queueSpec struct {
	name string
	args amqp.Table
}

// orderEventQueues lists the queues in declaration order: rejected events
// land in the dead-letter queue, so it must exist before the main queue
// points at it.
var orderEventQueues = []queueSpec{
	{name: dlqQueueName},
	{name: orderEventsQueue, args: amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderEventsQueue,
	}},
}

// DeclareTopology creates the order event queues and limits unacknowledged
// deliveries per consumer to prefetch. Declarations are idempotent, so every
// process start runs it.
func DeclareTopology(ch TopologyChannel, prefetch int) error {
	if prefetch < 1 {
		return fmt.Errorf("prefetch must be positive, got %d", prefetch)
	}
	if err := ch.ExchangeDeclare(dlxExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", dlxExchange, err)
	}
	for _, q := range orderEventQueues {
		if _, err := ch.QueueDeclare(q.name, true, false, false, false, q.args); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}
	if err := ch.QueueBind(dlqQueueName, orderEventsQueue, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", dlqQueueName, err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	return nil
}
