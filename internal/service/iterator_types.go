package service

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessageIterator is the message source consumed by Iterator.
// *kafkaclient.KafkaConsumer implements it.
type MessageIterator interface {
	// Messages is closed by the implementation when consumption stops.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges a processed message.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// DecodeFunc turns a raw message value into T.
type DecodeFunc[T any] func(value []byte) (T, error)

// Decoded pairs a decoded value with the message it came from.
type Decoded[T any] struct {
	Data    T
	Message kafka.Message
}
