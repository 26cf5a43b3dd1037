package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"statefinder/internal/env"
	"statefinder/internal/service"
	"statefinder/internal/sink"
	"statefinder/pkg/graceful"
	"statefinder/pkg/kafkaclient"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	env.LoadEnv()

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	broker := env.MustGetEnv("KAFKA_BROKER")
	topic := env.GetEnv("KAFKA_TOPIC", "location-submissions")
	groupID := env.MustGetEnv("KAFKA_GROUP_ID")

	slog.Info("Connecting to Kafka", "broker", broker, "topic", topic, "group_id", groupID)

	consumer, err := kafkaclient.NewKafkaConsumer(topic, groupID, broker)
	if err != nil {
		slog.Error("Failed to create kafka consumer", "error", err)
		os.Exit(1)
	}

	consumer.StartConsuming(ctx)
	iterator := service.NewIterator(consumer, sink.Decode)
	for obj := range iterator.Objects(ctx) {
		e := obj.Data
		fmt.Printf("%s %-16s %-20s %v\n", e.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"), e.Endpoint, e.Region(), e.Payload)
	}

	consumer.Stop()
	slog.Info("Submission tail finished")
}
