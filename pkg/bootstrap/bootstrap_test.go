package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagpost/internal/broker"
	"flagpost/internal/config"
	"flagpost/internal/logger"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host: "db", Port: 5432, User: "flag", Password: "secret", DBName: "flagpost",
	})
	assert.Equal(t, "postgres://flag:secret@db:5432/flagpost?sslmode=disable", dsn)
}

func TestInitBroker_Disabled(t *testing.T) {
	b := NewBase(&config.Config{}, logger.NopLogger())

	require.NoError(t, b.InitBroker("evaluation-service", true))
	assert.IsType(t, broker.NopProducer{}, b.Producer)
	assert.Nil(t, b.Consumer)
	assert.Empty(t, b.ShutdownBroker())
}

func TestInitBroker_UnknownType(t *testing.T) {
	b := NewBase(&config.Config{Broker: config.BrokerConfig{Type: "nats"}}, logger.NopLogger())
	assert.Error(t, b.InitBroker("evaluation-service", false))
}

func TestInitOptionalStoresSkipped(t *testing.T) {
	dc := NewDatabaseConnector(&config.Config{}, logger.NopLogger())

	rdb, err := dc.InitRedis(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mc, err := dc.InitMongoDB(context.Background())
	require.NoError(t, err)
	assert.Nil(t, mc)
}

func TestShutdown_CollectsErrors(t *testing.T) {
	b := NewBase(&config.Config{}, logger.NopLogger())

	err := b.Shutdown(context.Background(), func(context.Context) []error {
		return []error{errors.New("http server: timeout")}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server: timeout")
}
