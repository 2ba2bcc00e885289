package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"fertigation.io/farmwatch/internal/config"
)

// messageWriter is the part of *kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events to a Kafka topic. Messages are keyed by farm id
// so one farm's events stay ordered within a partition.
type KafkaSink struct {
	w     messageWriter
	topic string
}

// NewKafkaSink creates a producer for cfg.Topic on cfg.Brokers.
func NewKafkaSink(cfg config.KafkaConfig) *KafkaSink {
	return &KafkaSink{
		w: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: sendTimeout,
		},
		topic: cfg.Topic,
	}
}

func (s *KafkaSink) Name() string { return "kafka:" + s.topic }

// Send writes one message synchronously; callers run it off the request path.
func (s *KafkaSink) Send(ctx context.Context, e Event) error {
	payload, err := e.Encode()
	if err != nil {
		return err
	}
	err = s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.Alert.FarmID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
		Time: e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", e.Type, s.topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (s *KafkaSink) Close() error {
	return s.w.Close()
}
