package config

import (
	"flag"

	"statefinder/internal/env"
	"statefinder/pkg/location"
)

const (
	DefaultAddr       = ":8080"
	DefaultBackendURL = "http://localhost:8080/api/submit-location"
	DefaultKafkaTopic = "location-submissions"
)

// Config holds settings shared by the statefinder binaries.
type Config struct {
	Addr       string
	GeocodeURL string
	BackendURL string
	UserAgent  string
	Tracing    bool
	Debug      bool

	KafkaBroker  string
	KafkaTopic   string
	KafkaGroupID string
}

// FromEnv populates Config from the environment, after loading any .env file.
func FromEnv() *Config {
	env.LoadEnv()
	return &Config{
		Addr:         env.GetEnv("STATEFINDER_ADDR", DefaultAddr),
		GeocodeURL:   env.GetEnv("STATEFINDER_GEOCODE_URL", location.DefaultReverseURL),
		BackendURL:   env.GetEnv("STATEFINDER_BACKEND_URL", DefaultBackendURL),
		UserAgent:    env.GetEnv("STATEFINDER_USER_AGENT", location.DefaultUserAgent),
		Tracing:      env.GetEnvBool("STATEFINDER_TRACING", false),
		Debug:        env.GetEnvBool("STATEFINDER_DEBUG", false),
		KafkaBroker:  env.GetEnv("KAFKA_BROKER", ""),
		KafkaTopic:   env.GetEnv("KAFKA_TOPIC", DefaultKafkaTopic),
		KafkaGroupID: env.GetEnv("KAFKA_GROUP_ID", ""),
	}
}

// RegisterServerFlags binds the settings used by the submission server.
func (c *Config) RegisterServerFlags(fs *flag.FlagSet) {
	c.registerCommon(fs)
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP server address")
	fs.StringVar(&c.KafkaBroker, "kafka-broker", c.KafkaBroker, "Kafka broker for submission forwarding (empty disables)")
	fs.StringVar(&c.KafkaTopic, "kafka-topic", c.KafkaTopic, "Kafka topic for submission forwarding")
}

// RegisterClientFlags binds the settings used by the location client.
func (c *Config) RegisterClientFlags(fs *flag.FlagSet) {
	c.registerCommon(fs)
	fs.StringVar(&c.GeocodeURL, "geocode-url", c.GeocodeURL, "Reverse geocoding endpoint")
	fs.StringVar(&c.BackendURL, "backend-url", c.BackendURL, "Location submission endpoint")
	fs.StringVar(&c.UserAgent, "user-agent", c.UserAgent, "User agent sent to the geocoder and backend")
}

// registerCommon binds the flags both binaries share. Every flag defaults to
// the value already read from the environment, so a set flag wins.
func (c *Config) registerCommon(fs *flag.FlagSet) {
	fs.BoolVar(&c.Tracing, "tracing", c.Tracing, "Export OpenTelemetry traces to stdout")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable verbose debug logging")
}

// ForwardingEnabled reports whether submissions are forwarded to Kafka.
func (c *Config) ForwardingEnabled() bool {
	return c.KafkaBroker != "" && c.KafkaTopic != ""
}
