package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"statefinder/internal/config"
	"statefinder/internal/models"
	"statefinder/internal/telemetry"
	"statefinder/pkg/graceful"
	"statefinder/pkg/location"
	"statefinder/pkg/locator"
	"statefinder/pkg/position"
)

func main() {
	cfg := config.FromEnv()
	cfg.RegisterClientFlags(flag.CommandLine)

	lat := flag.Float64("lat", 0, "Device latitude")
	lon := flag.Float64("lon", 0, "Device longitude")
	accuracy := flag.Float64("accuracy", 0, "Reported position accuracy in meters")
	deny := flag.Bool("deny", false, "Refuse the location permission request")
	timeout := flag.Duration("timeout", position.DefaultOptions.Timeout, "Position request timeout")
	maxAge := flag.Duration("max-age", position.DefaultOptions.MaximumAge, "Reuse a position younger than this on repeated runs")
	highAccuracy := flag.Bool("high-accuracy", position.DefaultOptions.EnableHighAccuracy, "Ask for a high accuracy fix")
	runs := flag.Int("runs", 1, "Number of times to trigger the flow")
	flag.Parse()

	// The narrated log goes to stdout; structured logs stay on stderr.
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	if cfg.Tracing {
		shutdown, err := telemetry.InitTracer("statefinder-client")
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(shutdownCtx)
			}()
		}
	}

	client := locator.NewClient(
		position.NewCached(providerFromFlags(*lat, *lon, *accuracy, *deny)),
		location.NewClient(cfg.GeocodeURL, cfg.UserAgent),
		cfg.BackendURL,
		cfg.UserAgent,
	)
	client.Options = position.Options{
		EnableHighAccuracy: *highAccuracy,
		Timeout:            *timeout,
		MaximumAge:         *maxAge,
	}
	client.Renderer = locator.NewWriterRenderer(os.Stdout)

	client.Renderer.Render(client.State())
	var final locator.State
	for i := 0; i < max(*runs, 1) && ctx.Err() == nil; i++ {
		final = client.FindState(ctx)
	}
	if final.Phase != locator.PhaseDone {
		fmt.Fprintf(os.Stderr, "find state ended in %s\n", final.Phase)
		os.Exit(1)
	}
}

func providerFromFlags(lat, lon, accuracy float64, deny bool) position.Provider {
	if deny {
		return position.Denied{}
	}
	latSet, lonSet := false, false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			latSet = true
		case "lon":
			lonSet = true
		}
	})
	if !latSet || !lonSet {
		return position.Unavailable{}
	}
	return position.Static{
		Coords:   models.Coordinates{Latitude: lat, Longitude: lon},
		Accuracy: accuracy,
	}
}
