package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, IdempotencyMemory, cfg.IdempotencyDriver)
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.JWTUserRoleClaim)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("IDEMPOTENCY_DRIVER", "redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("RETRY_BACKOFF", "2s")
	t.Setenv("BASE_CURRENCY", "kes")
	t.Setenv("AUTH_TRUST_USER_METADATA_ROLE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMongo, cfg.StorageDriver)
	assert.Equal(t, IdempotencyRedis, cfg.IdempotencyDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []time.Duration{2 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, "KES", cfg.BaseCurrency)
	assert.True(t, cfg.JWTUserRoleClaim)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "mongo without uri", env: map[string]string{"AUTH_JWT_SECRET": "s", "STORAGE_DRIVER": "mongo"}},
		{name: "unknown storage", env: map[string]string{"AUTH_JWT_SECRET": "s", "STORAGE_DRIVER": "sqlite"}},
		{name: "mongo idempotency on memory", env: map[string]string{"AUTH_JWT_SECRET": "s", "IDEMPOTENCY_DRIVER": "mongo"}},
		{name: "bad backoff", env: map[string]string{"AUTH_JWT_SECRET": "s", "RETRY_BACKOFF": "1s,soon"}},
		{name: "bad poll interval", env: map[string]string{"AUTH_JWT_SECRET": "s", "OUTBOX_POLL_INTERVAL": "0s"}},
		{name: "bad timezone", env: map[string]string{"AUTH_JWT_SECRET": "s", "APP_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("AUTH_JWT_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
