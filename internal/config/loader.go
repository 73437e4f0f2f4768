package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnvVariables(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment variables: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(v, &cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("evaluation.cache.ttl_seconds", 300)
	v.SetDefault("evaluation.catalog_retry.max_attempts", 3)
	v.SetDefault("evaluation.catalog_retry.initial_interval", "50ms")
	v.SetDefault("evaluation.catalog_retry.max_interval", "500ms")
	v.SetDefault("evaluation.catalog_retry.multiplier", 2.0)

	v.SetDefault("broker.kafka.retry.multiplier", 2.0)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("cors.max_age_seconds", 86400)
}

func bindEnvVariables(v *viper.Viper) error {
	keys := []string{
		"broker.type",
		"broker.kafka.brokers",
		"broker.kafka.group_id",
		"broker.kafka.config_update_topic",
		"broker.kafka.decision_topic",
		"broker.kafka.dlq_topic",

		"database.postgres.host",
		"database.postgres.port",
		"database.postgres.user",
		"database.postgres.password",
		"database.postgres.dbname",
		"database.postgres.sslmode",
		"database.run_migrations",

		"database.redis.host",
		"database.redis.port",
		"database.redis.password",
		"database.redis.db",

		"database.mongodb.uri",
		"database.mongodb.database",

		"server.port",
		"server.read_timeout_seconds",
		"server.write_timeout_seconds",

		"logging.level",
		"logging.format",

		"evaluation.cache.enabled",
		"evaluation.cache.ttl_seconds",
		"evaluation.decision_events.enabled",

		"tracing.enabled",
		"tracing.service_name",
		"tracing.otlp.endpoint",
		"tracing.otlp.insecure",
	}

	for _, key := range keys {
		env := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if brokersEnv := v.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := splitList(brokersEnv)
		if len(brokers) > 0 {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	if origins := v.GetString("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
