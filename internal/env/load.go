package env

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, assuming environment variables are set directly.")
	}
}

// MustGetEnv returns the value of key or exits the process when it is unset.
func MustGetEnv(key string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		slog.Error("Environment variable not set", "key", key)
		os.Exit(1)
	}
	return val
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
