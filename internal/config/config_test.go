package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 8081
logging:
  level: debug
database:
  postgres:
    host: localhost
    port: 5432
    user: flagpost
    password: secret
    dbname: flagpost
  redis:
    host: localhost
    port: 6379
broker:
  type: kafka
  kafka:
    brokers: ["localhost:9092"]
    group_id: evaluation-service
    config_update_topic: catalog_updates
    decision_topic: feature_decisions
    retry:
      max_attempts: 5
      initial_interval: 1s
      max_interval: 10s
      multiplier: 2
evaluation:
  cache:
    enabled: true
  decision_events:
    enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, 5, cfg.Broker.Kafka.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Broker.Kafka.Retry.InitialInterval)

	assert.True(t, cfg.Evaluation.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Evaluation.Cache.TTL())
	assert.Equal(t, 3, cfg.Evaluation.CatalogRetry.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Evaluation.CatalogRetry.InitialInterval)

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, 86400, cfg.CORS.MaxAgeSeconds)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BROKER_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateStatic(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080, ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid without broker", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown broker", func(c *Config) { c.Broker.Type = "rabbitmq" }, "broker.type"},
		{"kafka without brokers", func(c *Config) { c.Broker.Type = "kafka" }, "broker.kafka.brokers"},
		{"postgres without user", func(c *Config) {
			c.Database.Postgres = PostgresConfig{Host: "db", Port: 5432, DBName: "x"}
		}, "database.postgres.user"},
		{"bad mongo uri", func(c *Config) { c.Database.MongoDB.URI = "http://mongo" }, "database.mongodb.uri"},
		{"cache without ttl", func(c *Config) { c.Evaluation.Cache.Enabled = true }, "evaluation.cache.ttl_seconds"},
		{"decision events without broker", func(c *Config) {
			c.Evaluation.DecisionEvents.Enabled = true
		}, "evaluation.decision_events.enabled"},
		{"rate limit without rps", func(c *Config) {
			c.Management.RateLimit = RateLimitConfig{Enabled: true, Burst: 1}
		}, "management.rate_limit.rps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected a ValidationError, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
