package util

import (
	"context"
	"fmt"
	"time"

	"ecommerce/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer writes catalog events to a single topic.
type KafkaProducer struct {
	writer  *kafka.Writer
	service string
}

// NewKafkaProducer builds a writer keyed by product id so events of one
// product stay on one partition.
func NewKafkaProducer(brokers []string, topic, service string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, service: service}
}

func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewKafkaProduceTimer(p.service, p.writer.Topic)

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
