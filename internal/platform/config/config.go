// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"scouthub/internal/policy"
)

// Server captures the process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// PostgresURL selects the durable store; empty means in-memory dev mode.
	PostgresURL string

	Redis RedisConfig

	// KafkaBrokers enables the audit sink; empty means log-only audit.
	KafkaBrokers []string
	KafkaTopic   string

	// ObjectStoreURL is the storage gateway that serves signed upload and
	// download URLs.
	ObjectStoreURL        string
	ObjectStoreSigningKey string
	DownloadURLTTL        time.Duration
}

// RedisConfig captures template-cache connection settings. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from SCOUTHUB_* environment variables.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("SCOUTHUB_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Dev default, must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("SCOUTHUB_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          envOr("SCOUTHUB_ADDR", ":8080"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     envOr("SCOUTHUB_JWT_ISSUER", "scouthub"),
		JWTAudience:   envOr("SCOUTHUB_JWT_AUDIENCE", "scouthub-api"),
		PostgresURL:   os.Getenv("SCOUTHUB_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("SCOUTHUB_REDIS_URL"),
			PoolSize:     envInt("SCOUTHUB_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SCOUTHUB_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("SCOUTHUB_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SCOUTHUB_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SCOUTHUB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers:          brokers,
		KafkaTopic:            envOr("SCOUTHUB_KAFKA_AUDIT_TOPIC", "scouthub.audit"),
		ObjectStoreURL:        envOr("SCOUTHUB_OBJECT_STORE_URL", "http://localhost:9000/objects"),
		ObjectStoreSigningKey: envOr("SCOUTHUB_OBJECT_STORE_SIGNING_KEY", "dev-object-signing-key"),
		DownloadURLTTL:        envDuration("SCOUTHUB_DOWNLOAD_URL_TTL", policy.DefaultDownloadURLTTL),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
