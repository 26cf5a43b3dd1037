// Package kafkaclient wraps segmentio/kafka-go behind small interfaces so
// the producer and consumer loops can be exercised with in-memory fakes.
package kafkaclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaReader is the subset of *kafka.Reader the consumer needs.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer pumps messages from a reader into a channel until stopped.
// Offsets are committed explicitly through CommitOffset.
type KafkaConsumer struct {
	reader      KafkaReader
	doneChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	messageChan chan kafka.Message
	retryDelay  time.Duration
}

// NewKafkaConsumer builds a consumer for topic within groupID on broker.
func NewKafkaConsumer(topic, groupID, broker string) (*KafkaConsumer, error) {
	if topic == "" || groupID == "" || broker == "" {
		return nil, errors.New("kafka consumer needs topic, group id and broker")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Offsets are committed by CommitOffset only.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader), nil
}

func newConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:      reader,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
		retryDelay:  time.Second,
	}
}

func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	slog.Debug("Committing offset", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming runs the read loop in a goroutine. The Messages channel is
// closed when the loop exits.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		slog.Info("Starting Kafka consumer loop")
		for {
			select {
			case <-ctx.Done():
				slog.Info("Context canceled, stopping consumer loop")
				return
			case <-kc.doneChan:
				slog.Info("Shutdown signal received, stopping consumer loop")
				return
			default:
			}

			msg, err := kc.reader.ReadMessage(ctx)
			if err != nil {
				if isClosed(err) || ctx.Err() != nil {
					slog.Info("Kafka reader finished", "error", err)
					return
				}
				slog.Warn("Error reading message", "error", err)
				select {
				case <-time.After(kc.retryDelay):
				case <-ctx.Done():
				case <-kc.doneChan:
				}
				continue
			}

			select {
			case kc.messageChan <- msg:
			case <-ctx.Done():
				return
			case <-kc.doneChan:
				return
			}
		}
	}()
}

// Stop ends the read loop, waits for it and closes the reader.
func (kc *KafkaConsumer) Stop() {
	kc.stopOnce.Do(func() {
		close(kc.doneChan)
		kc.wg.Wait()
		if err := kc.reader.Close(); err != nil {
			slog.Warn("Failed to close Kafka reader", "error", err)
		}
		slog.Info("Kafka consumer stopped")
	})
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || strings.Contains(err.Error(), "reader closed")
}
