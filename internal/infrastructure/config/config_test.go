package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the tests touch; viper treats empty
// variables as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SYNC_APP_NAME", "SYNC_APP_ENV", "SYNC_APP_PORT",
		"SYNC_DATABASE_HOST", "SYNC_DATABASE_PORT", "SYNC_DATABASE_PASSWORD", "SYNC_DATABASE_SSLMODE",
		"SYNC_DATABASE_MAX_OPEN_CONNS", "SYNC_DATABASE_MAX_IDLE_CONNS",
		"SYNC_REDIS_HOST", "SYNC_REDIS_PORT",
		"SYNC_SOURCE_API_BASE_URL", "SYNC_SOURCE_TIMEOUT", "SYNC_TARGET_MAX_RETRIES", "SYNC_TARGET_RATE_LIMIT",
		"SYNC_SYNC_INTERVAL", "SYNC_SYNC_MAX_PAGES",
		"SYNC_AUTH_JWT_SECRET", "SYNC_SECURITY_ENCRYPTION_KEY", "SYNC_SECURITY_CALLBACK_SECRET",
		"SYNC_STORAGE_ENABLED", "SYNC_STORAGE_BUCKET", "SYNC_STORAGE_ACCESS_KEY", "SYNC_STORAGE_SECRET_KEY",
		"SYNC_SWAGGER_ENABLED", "SYNC_SWAGGER_ALLOWED_IPS",
		"SYNC_TELEMETRY_SAMPLING_RATIO",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("SYNC_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "commerce-sync", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "commerce_sync", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "", cfg.Redis.Addr())
		assert.Equal(t, "https://api.genuka.com", cfg.Source.APIBaseURL)
		assert.Equal(t, "2023-11", cfg.Source.APIVersion)
		assert.Equal(t, 30*time.Second, cfg.Source.Client.Timeout)
		assert.Equal(t, 2, cfg.Target.Client.MaxRetries)
		assert.Equal(t, 500*time.Millisecond, cfg.Target.Client.RetryBackoff)
		assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
		assert.Equal(t, 60*time.Second, cfg.Sync.DebounceWindow)
		assert.Equal(t, 1000, cfg.Sync.MaxPages)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiration)
		assert.Equal(t, "webhooks", cfg.Storage.Prefix)
	})

	t.Run("loads values from environment variables with SYNC prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SYNC_APP_PORT", "9000")
		t.Setenv("SYNC_DATABASE_HOST", "testdb.local")
		t.Setenv("SYNC_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("SYNC_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("SYNC_REDIS_HOST", "cache.local")
		t.Setenv("SYNC_SOURCE_TIMEOUT", "5s")
		t.Setenv("SYNC_TARGET_MAX_RETRIES", "4")
		t.Setenv("SYNC_TARGET_RATE_LIMIT", "2.5")
		t.Setenv("SYNC_SYNC_INTERVAL", "30m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, 5*time.Second, cfg.Source.Client.Timeout)
		assert.Equal(t, 4, cfg.Target.Client.MaxRetries)
		assert.Equal(t, 2.5, cfg.Target.Client.RateLimit)
		assert.Equal(t, 2, cfg.Target.Client.Burst)
		assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
	})

	t.Run("reads variables from the env file", func(t *testing.T) {
		clearEnv(t)
		envFile := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(envFile, []byte("SYNC_SOURCE_CLIENT_ID=from-dotenv\n"), 0o600))
		t.Setenv("SYNC_ENV_FILE", envFile)
		t.Cleanup(func() { os.Unsetenv("SYNC_SOURCE_CLIENT_ID") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.Source.ClientID)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SYNC_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("SYNC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects a sync interval below one minute", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SYNC_SYNC_INTERVAL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.interval")
	})

	t.Run("requires bucket credentials when storage is enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SYNC_STORAGE_ENABLED", "true")
		t.Setenv("SYNC_STORAGE_BUCKET", "archive")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.access_key")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SYNC_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SYNC_APP_ENV", "production")
		t.Setenv("SYNC_AUTH_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("SYNC_SECURITY_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
		t.Setenv("SYNC_SECURITY_CALLBACK_SECRET", "callback-secret")
		t.Setenv("SYNC_DATABASE_PASSWORD", "secure-password")
		t.Setenv("SYNC_DATABASE_SSLMODE", "require")
		t.Setenv("SYNC_SWAGGER_ENABLED", "false")
	}

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"valid production config", nil, ""},
		{"short jwt secret", map[string]string{"SYNC_AUTH_JWT_SECRET": "short"}, "auth.jwt_secret must be at least 32 characters"},
		{"missing encryption key", map[string]string{"SYNC_SECURITY_ENCRYPTION_KEY": ""}, "security.encryption_key is required"},
		{"missing callback secret", map[string]string{"SYNC_SECURITY_CALLBACK_SECRET": ""}, "security.callback_secret is required"},
		{"missing database password", map[string]string{"SYNC_DATABASE_PASSWORD": ""}, "database.password is required"},
		{"ssl disabled", map[string]string{"SYNC_DATABASE_SSLMODE": "disable"}, "database.sslmode cannot be 'disable'"},
		{"open swagger", map[string]string{"SYNC_SWAGGER_ENABLED": "true"}, "swagger endpoint must be disabled"},
		{"restricted swagger", map[string]string{"SYNC_SWAGGER_ENABLED": "true", "SYNC_SWAGGER_ALLOWED_IPS": "10.0.0.1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidProductionBase(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.True(t, cfg.App.IsProduction())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
