package rabbitmq

import (
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// OrdersExchange receives every order event, routed by event type.
	OrdersExchange = "orders_topic"
	// KitchenQueue is bound to all order events for the kitchen display.
	KitchenQueue   = "kitchen_queue"
	kitchenBinding = "orders.order.*"
)

// Connection owns the AMQP connection and the channel used for publishing.
type Connection struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

// Connect dials the broker and declares the order exchange and kitchen queue.
func Connect(url string) (*Connection, error) {
	if url == "" {
		return nil, fmt.Errorf("rabbitmq url is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return &Connection{Conn: conn, Channel: channel}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		OrdersExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", OrdersExchange, err)
	}
	if _, err := ch.QueueDeclare(KitchenQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", KitchenQueue, err)
	}
	if err := ch.QueueBind(KitchenQueue, kitchenBinding, OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", KitchenQueue, err)
	}
	return nil
}

// Close shuts the channel, then the connection.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Channel != nil {
		errs = append(errs, c.Channel.Close())
	}
	if c.Conn != nil {
		errs = append(errs, c.Conn.Close())
	}
	return errors.Join(errs...)
}
