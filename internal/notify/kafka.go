package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"arbradar/internal/spread"
)

// KafkaFeed produces qualifying opportunities to a Kafka topic as JSON,
// keyed by symbol, for downstream consumers.
type KafkaFeed struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaFeed(broker, topic string, logger *slog.Logger) *KafkaFeed {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaFeed{writer: writer, logger: logger}
}

func (f *KafkaFeed) Name() string { return "kafka" }

func (f *KafkaFeed) Notify(ctx context.Context, opp spread.Opportunity) error {
	data, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("serialize opportunity: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = f.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(opp.Symbol),
		Value: data,
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}
	return nil
}

func (f *KafkaFeed) Close() error {
	return f.writer.Close()
}
