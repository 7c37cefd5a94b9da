package messaging

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

// DefaultTopic carries every order event; the order number keys the partition.
const DefaultTopic = "canteen.orders"

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes events through a synchronous producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(event)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.OrderNumber),
		Value:     sarama.ByteEncoder(body),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("send %s for %s: %w", event.Type, event.OrderNumber, err)
	}
	return nil
}

// Close releases the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
