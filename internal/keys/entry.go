package keys

import (
	"fmt"
	"strings"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Submission returns the Kafka message key for a submission received on
// endpoint for region. Keying by region keeps one region's submissions on a
// single partition. An empty region falls back to "unknown".
func Submission(endpoint, region string) string {
	if strings.TrimSpace(region) == "" {
		region = "unknown"
	}
	return fmt.Sprintf("%s/%s", sanitizeKey(endpoint), sanitizeKey(region))
}
