package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DB_DRIVER", "DB_DSN", "MODEL_PATH", "AUTH_JWT_SECRET", "APP_PORT", "REDIS_ADDR", "REDIS_KEY_PREFIX", "LOG_FORMAT", "APP_NAME", "DB_CONNECT_RETRIES", "DB_CONNECT_RETRY_DELAY_MS", "NOTIFY_WEBHOOK_URL", "NOTIFY_WEBHOOK_TIMEOUT_SECONDS", "MODEL_ALPHA", "TRAINING_TEST_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./tickets.db", cfg.Database.DSN)
	assert.Equal(t, "models/triage_model.bin", cfg.Model.Path)
	assert.Equal(t, 1000, cfg.Model.MaxFeatures)
	assert.Equal(t, 1.0, cfg.Model.Alpha)
	assert.Equal(t, 0.2, cfg.Model.TestSize)
	assert.Equal(t, int64(42), cfg.Model.Seed)
	assert.Equal(t, "0.0.0.0:8000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.Auth.AuthEnabled())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "triage:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, cfg.App.Name, cfg.Logger.Service)
	assert.Equal(t, 3, cfg.Database.ConnectRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.ConnectRetryDelay())
	assert.Empty(t, cfg.Notification.WebhookURL)
	assert.Equal(t, 3*time.Second, cfg.Notification.WebhookTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_DSN", "postgres://localhost/tickets")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("TRIAGE_CACHE_TTL_SECONDS", "5")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("MODEL_MAX_FEATURES", "not-a-number")
	t.Setenv("NOTIFY_WEBHOOK_URL", " https://hooks.example.com/oncall ")
	t.Setenv("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/tickets", cfg.Database.DSN)
	assert.True(t, cfg.Auth.AuthEnabled())
	assert.Equal(t, 5*time.Second, cfg.Redis.CacheTTL())
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.Equal(t, 1000, cfg.Model.MaxFeatures)
	assert.Equal(t, "https://hooks.example.com/oncall", cfg.Notification.WebhookURL)
	assert.Equal(t, 7*time.Second, cfg.Notification.WebhookTimeout())
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "x")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("test size", func(t *testing.T) {
		t.Setenv("TRAINING_TEST_SIZE", "1.5")
		_, err := Load()
		assert.Error(t, err)
	})
}
