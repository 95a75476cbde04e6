package config

import (
	"os"
	"strings"
	"time"

	pstrings "github.com/natovichat/rent-management-app-sub001/pkg/platform/strings"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr            string
	DatabaseURL     string
	Redis           RedisConfig
	KafkaBrokers    []string
	AdminToken      string
	JWTSigningKey   string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// RedisConfig holds tuning for the optional aggregate cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
// DATABASE_URL empty means in-memory stores (local development).
func FromEnv() Config {
	addr := os.Getenv("RENT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	adminToken := os.Getenv("ADMIN_TOKEN")

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = pstrings.DedupeAndTrim(strings.Split(raw, ","))
	}

	return Config{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		KafkaBrokers:  brokers,
		AdminToken:    adminToken,
		JWTSigningKey: jwtSigningKey,
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}
