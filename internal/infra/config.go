package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"leaguebook"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"leaguebook"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"leaguebook"`
	PGMaxConns  int    `env:"PG_MAX_CONNS" envDefault:"10"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTAdminExpiry time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort        int  `env:"API_PORT" envDefault:"3100"`
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Kafka
	KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopicPrefix string `env:"KAFKA_TOPIC_PREFIX" envDefault:"leaguebook"`

	// Outbox relay
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	// The api process relays its own outbox; always on with memory storage.
	OutboxRelayInProcess bool `env:"OUTBOX_RELAY_IN_PROCESS" envDefault:"false"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`

	// Photo extraction (OpenAI-compatible chat completions)
	ExtractionAPIKey    string `env:"EXTRACTION_API_KEY"`
	ExtractionBaseURL   string `env:"EXTRACTION_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ExtractionModel     string `env:"EXTRACTION_MODEL" envDefault:"gpt-4o"`
	ExtractionRateLimit int    `env:"EXTRACTION_RATE_LIMIT" envDefault:"10"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.StorageDriver)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	if c.StorageDriver == StoragePostgres && c.PGMaxConns <= 0 {
		return fmt.Errorf("PG_MAX_CONNS must be positive")
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// RelayInProcess reports whether cmd/api should run the outbox relay itself.
// A memory store's outbox is invisible to any other process.
func (c *Config) RelayInProcess() bool {
	return c.OutboxRelayInProcess || c.StorageDriver == StorageMemory
}

// ExtractionEnabled reports whether photo extraction has credentials.
func (c *Config) ExtractionEnabled() bool {
	return c.ExtractionAPIKey != ""
}
