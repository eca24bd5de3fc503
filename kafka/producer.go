package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/yashrajoria/food-ordering-backend/models"
)

// OrderEventProducer publishes order lifecycle events. Delivery is
// best-effort; callers must not fail their request on publish errors.
type OrderEventProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &OrderEventProducer{
		writer: writer,
		topic:  topic,
	}
}

func (p *OrderEventProducer) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	// Key by order id so events for one order land on one partition, in order.
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: data,
	})
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
