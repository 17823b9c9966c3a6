// Package config assembles process-level configuration from the environment
// so main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	AdminToken    string
	JWTSigningKey string
	Upstream      string
}

// RedisConfig captures the counter store connection settings.
// An empty URL means the in-memory store is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the audit sink settings. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PostgresConfig captures the allowlist database settings.
// An empty DSN means the in-memory allowlist is used instead.
type PostgresConfig struct {
	DSN string
}

// Config is everything main needs to wire the gateway.
type Config struct {
	Server   Server
	Redis    RedisConfig
	Kafka    KafkaConfig
	Postgres PostgresConfig
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	addr := os.Getenv("LIMITGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "limitgate.audit.security"
	}
	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Server: Server{
			Addr:          addr,
			AdminToken:    os.Getenv("LIMITGATE_ADMIN_TOKEN"),
			JWTSigningKey: jwtSigningKey,
			Upstream:      os.Getenv("LIMITGATE_UPSTREAM"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT_MS", 500*time.Millisecond),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT_MS", 200*time.Millisecond),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT_MS", 200*time.Millisecond),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
