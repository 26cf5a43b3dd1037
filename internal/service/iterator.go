// Package service turns a stream of Kafka messages into decoded values.
package service

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// Iterator decodes each message from a MessageIterator and yields it,
// committing the offset once the value has been handed to the consumer.
// Messages that fail to decode are committed and skipped so a poison message
// cannot stall the partition.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
	}
}

// Objects streams decoded values until the message channel closes or ctx is done.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *Decoded[T] {
	out := make(chan *Decoded[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			data, err := it.decode(msg.Value)
			if err != nil {
				slog.Warn("Skipping undecodable message", "topic", msg.Topic, "offset", msg.Offset, "error", err)
				it.commit(ctx, msg)
				continue
			}

			select {
			case out <- &Decoded[T]{Data: data, Message: msg}:
			case <-ctx.Done():
				return
			}

			it.commit(ctx, msg)
		}
	}()
	return out
}

func (it *Iterator[T]) commit(ctx context.Context, msg kafka.Message) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		slog.Warn("Failed to commit offset", "offset", msg.Offset, "error", err)
	}
}
