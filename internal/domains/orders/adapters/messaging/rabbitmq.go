package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

// DefaultExchange is the topic exchange order events are published to.
const DefaultExchange = "orders_topic"

const publishTimeout = 5 * time.Second

// amqpChannel is the slice of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ ports.EventPublisher = (*RabbitMQPublisher)(nil)

// RabbitMQPublisher sends events to a topic exchange, routed by event type.
type RabbitMQPublisher struct {
	channel  amqpChannel
	exchange string
}

func NewRabbitMQPublisher(channel amqpChannel, exchange string) *RabbitMQPublisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &RabbitMQPublisher{channel: channel, exchange: exchange}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event domain.Event) error {
	body, err := encode(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		string(event.Type),
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    fmt.Sprintf("%s:%s", event.OrderNumber, event.Type),
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish %s for %s: %w", event.Type, event.OrderNumber, err)
	}
	return nil
}
