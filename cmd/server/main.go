package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"statefinder/internal/api"
	"statefinder/internal/config"
	"statefinder/internal/sink"
	"statefinder/internal/telemetry"
	"statefinder/pkg/graceful"
	"statefinder/pkg/kafkaclient"
)

func main() {
	cfg := config.FromEnv()
	cfg.RegisterServerFlags(flag.CommandLine)
	flag.Parse()

	setupLogging(cfg.Debug)

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	telemetry.InitMetrics()
	if cfg.Tracing {
		shutdown, err := telemetry.InitTracer("statefinder-server")
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Error("Failed to shutdown tracer", "error", err)
				}
			}()
		}
	}

	sinks := sink.Multi{sink.LogSink{}}
	if cfg.ForwardingEnabled() {
		producer, err := kafkaclient.NewProducer(cfg.KafkaTopic, cfg.KafkaBroker)
		if err != nil {
			slog.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				slog.Error("Failed to close Kafka producer", "error", err)
			}
		}()
		sinks = append(sinks, sink.KafkaSink{Publisher: producer})
		slog.Info("Forwarding submissions to Kafka", "broker", cfg.KafkaBroker, "topic", producer.Topic())
	}

	server := api.NewServer(cfg.Addr, api.NewHandler(sinks))
	if err := server.Run(ctx); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
