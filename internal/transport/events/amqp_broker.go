package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fsdevblog/splitledger/internal/domain"
)

// AMQPBroker публикует события в topic exchange. Ключ маршрутизации - тип события,
// например expense.created.
type AMQPBroker struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
}

func NewAMQPBroker(url, exchange string) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPBroker{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func (b *AMQPBroker) Publish(ctx context.Context, event domain.LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// канал amqp не рассчитан на одновременную публикацию из нескольких горутин.
	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.channel.PublishWithContext(
		ctx,
		b.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (b *AMQPBroker) Close() error {
	var chErr error
	if b.channel != nil {
		chErr = b.channel.Close()
	}
	if b.conn != nil {
		return errors.Join(chErr, b.conn.Close())
	}
	return chErr
}
