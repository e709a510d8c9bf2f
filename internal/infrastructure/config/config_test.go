package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "monartisan", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "monartisan", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "EUR", cfg.Payment.Currency)
		assert.Equal(t, 24*time.Hour, cfg.Scheduler.ReminderLeadTime)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignTTL)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("loads values from environment variables with MONARTISAN prefix", func(t *testing.T) {
		t.Setenv("MONARTISAN_APP_NAME", "test-app")
		t.Setenv("MONARTISAN_APP_PORT", "9000")
		t.Setenv("MONARTISAN_DATABASE_HOST", "testdb.local")
		t.Setenv("MONARTISAN_DATABASE_PORT", "5433")
		t.Setenv("MONARTISAN_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("MONARTISAN_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("MONARTISAN_STORAGE_BUCKET", "docs")
		t.Setenv("MONARTISAN_STORAGE_USE_PATH_STYLE", "true")
		t.Setenv("MONARTISAN_PAYMENT_WEBHOOK_SECRET", "whsec")
		t.Setenv("MONARTISAN_PAYMENT_STRIPE_WEBHOOK_SECRET", "whsec_stripe")
		t.Setenv("MONARTISAN_SCHEDULER_REMINDER_LEAD_TIME", "12h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "docs", cfg.Storage.Bucket)
		assert.True(t, cfg.Storage.UsePathStyle)
		assert.Equal(t, "whsec", cfg.Payment.WebhookSecret)
		assert.Equal(t, "whsec_stripe", cfg.Payment.StripeWebhookSecret)
		assert.Equal(t, 12*time.Hour, cfg.Scheduler.ReminderLeadTime)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("MONARTISAN_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("MONARTISAN_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		t.Setenv("MONARTISAN_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects non EUR currency", func(t *testing.T) {
		t.Setenv("MONARTISAN_PAYMENT_CURRENCY", "USD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payment.currency")
	})

	t.Run("profiling needs an address", func(t *testing.T) {
		t.Setenv("MONARTISAN_TELEMETRY_PROFILING_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pyroscope_address")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("MONARTISAN_APP_ENV", "production")
		t.Setenv("MONARTISAN_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("MONARTISAN_DATABASE_PASSWORD", "secure-password")
		t.Setenv("MONARTISAN_DATABASE_SSLMODE", "require")
		t.Setenv("MONARTISAN_PAYMENT_WEBHOOK_SECRET", "whsec_live")
		t.Setenv("MONARTISAN_SWAGGER_ENABLED", "false")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "requires jwt.secret",
			env:     map[string]string{"MONARTISAN_JWT_SECRET": ""},
			wantErr: "jwt.secret is required in production",
		},
		{
			name:    "requires long jwt.secret",
			env:     map[string]string{"MONARTISAN_JWT_SECRET": "short-secret"},
			wantErr: "jwt.secret must be at least 32 characters",
		},
		{
			name:    "requires database.password",
			env:     map[string]string{"MONARTISAN_DATABASE_PASSWORD": ""},
			wantErr: "database.password is required in production",
		},
		{
			name:    "requires SSL",
			env:     map[string]string{"MONARTISAN_DATABASE_SSLMODE": "disable"},
			wantErr: "database.sslmode cannot be 'disable' in production",
		},
		{
			name:    "requires webhook secret",
			env:     map[string]string{"MONARTISAN_PAYMENT_WEBHOOK_SECRET": ""},
			wantErr: "payment.webhook_secret is required in production",
		},
		{
			name:    "rejects wildcard CORS",
			env:     map[string]string{"MONARTISAN_HTTP_CORS_ALLOW_ORIGINS": "*"},
			wantErr: "cors_allow_origins cannot be '*'",
		},
		{
			name: "rejects unprotected swagger",
			env: map[string]string{
				"MONARTISAN_SWAGGER_ENABLED":      "true",
				"MONARTISAN_SWAGGER_REQUIRE_AUTH": "false",
			},
			wantErr: "swagger endpoint must be disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidProductionBase(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("passes with swagger enabled and require_auth", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("MONARTISAN_SWAGGER_ENABLED", "true")
		t.Setenv("MONARTISAN_SWAGGER_REQUIRE_AUTH", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
	})
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
		assert.Contains(t, dsn, "/testdb")
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
