package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "gateway", cfg.Database.User)
				assert.Equal(t, "https://api.perplexity.ai", cfg.Providers.Perplexity.BaseURL)
				assert.Equal(t, "https://api.anthropic.com", cfg.Providers.Anthropic.BaseURL)
				assert.Equal(t, 10000, cfg.Usage.BufferSize)
				assert.Equal(t, 2, cfg.Usage.WorkerCount)
			},
		},
		{
			name: "production configuration with providers",
			envVars: map[string]string{
				"ENVIRONMENT":       "production",
				"SERVER_PORT":       "9000",
				"DB_HOST":           "prod-db.example.com",
				"DB_PORT":           "5433",
				"ANTHROPIC_API_KEY": "sk-ant-xxxxx",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsProduction())
				assert.False(t, cfg.IsDevelopment())
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "prod-db.example.com", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.NotEmpty(t, cfg.Providers.Anthropic.APIKey)
			},
		},
		{
			name: "production without any provider key fails",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"DB_HOST":     "prod-db.example.com",
			},
			wantErr: true,
		},
		{
			name: "custom timeouts and pool settings",
			envVars: map[string]string{
				"SERVER_READ_TIMEOUT":  "60s",
				"SERVER_WRITE_TIMEOUT": "90s",
				"DB_MAX_OPEN_CONNS":    "50",
				"DB_MAX_IDLE_CONNS":    "10",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 50, cfg.Database.MaxOpenConns)
				assert.Equal(t, 10, cfg.Database.MaxIdleConns)
			},
		},
		{
			name: "database url takes precedence",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://u:p@db.internal:6432/gw",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://u:p@db.internal:6432/gw", cfg.Database.DSN())
				assert.Equal(t, "host=db.internal port=6432 database=gw", cfg.Database.LogString())
			},
		},
		{
			name: "invalid usage buffer size fails",
			envVars: map[string]string{
				"USAGE_BUFFER_SIZE": "0",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "gateway",
		Password: "secret",
		Database: "gateway",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=gateway")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}
