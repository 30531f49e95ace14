package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SYNCBRIDGE_APP_NAME":              os.Getenv("SYNCBRIDGE_APP_NAME"),
		"SYNCBRIDGE_APP_ENV":               os.Getenv("SYNCBRIDGE_APP_ENV"),
		"SYNCBRIDGE_APP_PORT":              os.Getenv("SYNCBRIDGE_APP_PORT"),
		"SYNCBRIDGE_DATABASE_HOST":         os.Getenv("SYNCBRIDGE_DATABASE_HOST"),
		"SYNCBRIDGE_DATABASE_PORT":         os.Getenv("SYNCBRIDGE_DATABASE_PORT"),
		"SYNCBRIDGE_DATABASE_USER":         os.Getenv("SYNCBRIDGE_DATABASE_USER"),
		"SYNCBRIDGE_DATABASE_PASSWORD":     os.Getenv("SYNCBRIDGE_DATABASE_PASSWORD"),
		"SYNCBRIDGE_DATABASE_DBNAME":       os.Getenv("SYNCBRIDGE_DATABASE_DBNAME"),
		"SYNCBRIDGE_QUEUE_BATCH_SIZE":      os.Getenv("SYNCBRIDGE_QUEUE_BATCH_SIZE"),
		"SYNCBRIDGE_SYNC_DEDUP_WINDOW":     os.Getenv("SYNCBRIDGE_SYNC_DEDUP_WINDOW"),
		"SYNCBRIDGE_SYNC_ECHO_WINDOW":      os.Getenv("SYNCBRIDGE_SYNC_ECHO_WINDOW"),
		"SYNCBRIDGE_SYNC_FFN_BASE_URL":     os.Getenv("SYNCBRIDGE_SYNC_FFN_BASE_URL"),
		"SYNCBRIDGE_QUEUE_POLL_INTERVAL":   os.Getenv("SYNCBRIDGE_QUEUE_POLL_INTERVAL"),
		"SYNCBRIDGE_REDIS_ENABLED":         os.Getenv("SYNCBRIDGE_REDIS_ENABLED"),
		"SYNCBRIDGE_QUEUE_WORKERS_PER_QUEUE": os.Getenv("SYNCBRIDGE_QUEUE_WORKERS_PER_QUEUE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "syncbridge", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 10*time.Minute, cfg.Sync.DedupWindow)
		assert.Equal(t, 3*time.Minute, cfg.Sync.EchoWindow)
		assert.Equal(t, 2*time.Second, cfg.Queue.PollInterval)
		assert.Equal(t, 5, cfg.Queue.RetryLimit)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("loads values from environment variables with SYNCBRIDGE prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNCBRIDGE_APP_NAME", "test-app")
		os.Setenv("SYNCBRIDGE_APP_ENV", "testing")
		os.Setenv("SYNCBRIDGE_APP_PORT", "9000")
		os.Setenv("SYNCBRIDGE_DATABASE_HOST", "testdb.local")
		os.Setenv("SYNCBRIDGE_DATABASE_PORT", "5433")
		os.Setenv("SYNCBRIDGE_DATABASE_USER", "testuser")
		os.Setenv("SYNCBRIDGE_DATABASE_PASSWORD", "testpass")
		os.Setenv("SYNCBRIDGE_SYNC_DEDUP_WINDOW", "20m")
		os.Setenv("SYNCBRIDGE_SYNC_FFN_BASE_URL", "https://ffn.example.com")
		os.Setenv("SYNCBRIDGE_REDIS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 20*time.Minute, cfg.Sync.DedupWindow)
		assert.Equal(t, "https://ffn.example.com", cfg.Sync.FfnBaseURL)
		assert.True(t, cfg.Redis.Enabled)
	})

	t.Run("rejects non-positive batch size", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNCBRIDGE_QUEUE_BATCH_SIZE", "-3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queue.batch_size")
	})

	t.Run("rejects echo window longer than dedup window", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNCBRIDGE_SYNC_ECHO_WINDOW", "30m")
		os.Setenv("SYNCBRIDGE_SYNC_DEDUP_WINDOW", "10m")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "echo_window")
	})

	t.Run("rejects zero workers per queue", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNCBRIDGE_QUEUE_WORKERS_PER_QUEUE", "0")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workers_per_queue")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "user=testuser")
	assert.Contains(t, dsn, "dbname=testdb")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.local", Port: 6380}
	assert.Equal(t, "redis.local:6380", cfg.Addr())
}
