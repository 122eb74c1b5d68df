package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// QueuePublisher writes sale events to a durable RabbitMQ queue.
type QueuePublisher struct {
	conn  *amqp.Connection
	ch    amqpChannel
	queue string
}

// DialQueue connects to the broker and declares the queue.
func DialQueue(url, queue string) (*QueuePublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &QueuePublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *QueuePublisher) Publish(ctx context.Context, event SaleCommitted) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[notify] encode sale %d: %v", event.SaleID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    strconv.FormatInt(event.SaleID, 10),
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	})
	if err != nil {
		log.Printf("[notify] publish sale %d to %s failed: %v", event.SaleID, p.queue, err)
	}
}

func (p *QueuePublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		log.Printf("[notify] close channel: %v", err)
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
