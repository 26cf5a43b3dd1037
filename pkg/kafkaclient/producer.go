package kafkaclient

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of *kafka.Writer the producer needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes keyed messages to one topic.
type Producer struct {
	writer KafkaWriter
	topic  string
}

// NewProducer returns a Producer writing to topic on broker.
func NewProducer(topic, broker string) (*Producer, error) {
	if topic == "" || broker == "" {
		return nil, errors.New("kafka producer needs topic and broker")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{writer: writer, topic: topic}, nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w KafkaWriter, topic string) *Producer {
	return &Producer{writer: w, topic: topic}
}

func (p *Producer) Topic() string { return p.topic }

func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
