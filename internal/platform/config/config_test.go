package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scouthub/internal/policy"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SCOUTHUB_ADDR", "")
	t.Setenv("SCOUTHUB_DOWNLOAD_URL_TTL", "")
	t.Setenv("SCOUTHUB_KAFKA_BROKERS", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, policy.DefaultDownloadURLTTL, cfg.DownloadURLTTL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCOUTHUB_ADDR", ":9999")
	t.Setenv("SCOUTHUB_DOWNLOAD_URL_TTL", "90s")
	t.Setenv("SCOUTHUB_KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg := FromEnv()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.DownloadURLTTL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}
