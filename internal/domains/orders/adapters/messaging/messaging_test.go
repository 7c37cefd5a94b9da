package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
)

type capturedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []capturedPublish
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.published = append(f.published, capturedPublish{exchange: exchange, key: key, msg: msg})
	return f.err
}

func placedEvent() domain.Event {
	return domain.Event{
		Type:        domain.EventOrderPlaced,
		OrderID:     3,
		OrderNumber: "ORD000003",
		CustomerID:  10,
		Status:      domain.StatusPending,
		TotalAmount: decimal.NewFromInt(1300),
		OccurredAt:  time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestRabbitMQPublisher_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewRabbitMQPublisher(ch, "")

	require.NoError(t, pub.Publish(context.Background(), placedEvent()))
	require.Len(t, ch.published, 1)
	got := ch.published[0]
	require.Equal(t, DefaultExchange, got.exchange)
	require.Equal(t, string(domain.EventOrderPlaced), got.key)
	require.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	require.Equal(t, "application/json", got.msg.ContentType)

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	require.Equal(t, "ORD000003", decoded.OrderNumber)
	require.True(t, decimal.NewFromInt(1300).Equal(decoded.TotalAmount))
}

func TestRabbitMQPublisher_WrapsErrors(t *testing.T) {
	pub := NewRabbitMQPublisher(&fakeChannel{err: amqp.ErrClosed}, "orders_topic")
	err := pub.Publish(context.Background(), placedEvent())
	require.ErrorIs(t, err, amqp.ErrClosed)
	require.Contains(t, err.Error(), "ORD000003")
}

func TestKafkaPublisher_KeysByOrderNumber(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "ORD000003" {
			return errors.New("unexpected key " + string(key))
		}
		if msg.Topic != DefaultTopic {
			return errors.New("unexpected topic " + msg.Topic)
		}
		return nil
	})
	pub := NewKafkaPublisher(producer, "")

	require.NoError(t, pub.Publish(context.Background(), placedEvent()))
	require.NoError(t, pub.Close())
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, domain.Event) error { return f.err }

func TestFanout_JoinsErrors(t *testing.T) {
	boom := errors.New("broker down")
	ch := &fakeChannel{}
	fan := Fanout{NewRabbitMQPublisher(ch, ""), failingPublisher{err: boom}, Noop{}}

	err := fan.Publish(context.Background(), placedEvent())
	require.ErrorIs(t, err, boom)
	require.Len(t, ch.published, 1)
}
