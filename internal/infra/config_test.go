package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 3100, cfg.APIPort)
	assert.Equal(t, 8*time.Hour, cfg.JWTAdminExpiry)
	assert.Equal(t, "leaguebook", cfg.KafkaTopicPrefix)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.False(t, cfg.ExtractionEnabled())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("API_PORT", "8080")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("EXTRACTION_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.True(t, cfg.ExtractionEnabled())
}

func TestConfigValidate(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef"
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"insecure default secret", Config{StorageDriver: StoragePostgres, OutboxBatchSize: 1, PGMaxConns: 5, JWTSecret: "change-me-in-production"}, "insecure default"},
		{"short secret", Config{StorageDriver: StoragePostgres, OutboxBatchSize: 1, PGMaxConns: 5, JWTSecret: "short"}, "too short"},
		{"dev bypass", Config{StorageDriver: StorageMemory, OutboxBatchSize: 1, JWTSecret: "x", AllowInsecureDefaults: true}, ""},
		{"unknown driver", Config{StorageDriver: "sqlite", OutboxBatchSize: 1, JWTSecret: strong}, "STORAGE_DRIVER"},
		{"zero batch", Config{StorageDriver: StoragePostgres, PGMaxConns: 5, JWTSecret: strong}, "OUTBOX_BATCH_SIZE"},
		{"zero pool", Config{StorageDriver: StoragePostgres, OutboxBatchSize: 1, JWTSecret: strong}, "PG_MAX_CONNS"},
		{"memory ignores pool", Config{StorageDriver: StorageMemory, OutboxBatchSize: 1, JWTSecret: strong}, ""},
		{"valid", Config{StorageDriver: StoragePostgres, OutboxBatchSize: 10, PGMaxConns: 5, JWTSecret: strong}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5432, PGDatabase: "lb"}
	assert.Equal(t, "postgres://u:p@db:5432/lb?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestConfig_RelayInProcess(t *testing.T) {
	assert.False(t, (&Config{StorageDriver: StoragePostgres}).RelayInProcess())
	assert.True(t, (&Config{StorageDriver: StoragePostgres, OutboxRelayInProcess: true}).RelayInProcess())
	assert.True(t, (&Config{StorageDriver: StorageMemory}).RelayInProcess())
}
