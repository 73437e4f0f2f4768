package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagpost/internal/config"
	"flagpost/internal/logger"
	"flagpost/pkg/models"
)

type recordingProducer struct {
	topic string
	msgs  []models.MessageEnvelope
}

func (p *recordingProducer) Publish(_ context.Context, topic string, msg models.MessageEnvelope) error {
	p.topic = topic
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestNewProducer(t *testing.T) {
	log := logger.NopLogger()

	p, err := NewProducer(config.BrokerConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, NopProducer{}, p)
	assert.NoError(t, p.Publish(context.Background(), "t", models.MessageEnvelope{}))

	p, err = NewProducer(config.BrokerConfig{Type: "kafka", Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}}}, log)
	require.NoError(t, err)
	assert.IsType(t, &KafkaProducer{}, p)
	require.NoError(t, p.Close())

	_, err = NewProducer(config.BrokerConfig{Type: "rabbitmq"}, log)
	assert.Error(t, err)
}

func TestNewConsumer_Disabled(t *testing.T) {
	c, err := NewConsumer(config.BrokerConfig{}, logger.NopLogger())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestProcessMessageWithRetry(t *testing.T) {
	c := NewKafkaConsumer(config.KafkaConfig{
		Retry: config.RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
	}, logger.NopLogger())

	calls := 0
	err := c.processMessageWithRetry(context.Background(), models.MessageEnvelope{ID: "m1"}, func(context.Context, models.MessageEnvelope) error {
		calls++
		if calls < 2 {
			return errors.New("redis unavailable")
		}
		return nil
	}, "catalog-updates")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestProcessMessageWithRetry_RecoversPanic(t *testing.T) {
	c := NewKafkaConsumer(config.KafkaConfig{
		Retry: config.RetryConfig{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
	}, logger.NopLogger())

	err := c.processMessageWithRetry(context.Background(), models.MessageEnvelope{ID: "m1"}, func(context.Context, models.MessageEnvelope) error {
		panic("boom")
	}, "catalog-updates")

	assert.Error(t, err)
}

func TestSendToDLQ(t *testing.T) {
	dlq := &recordingProducer{}
	c := NewKafkaConsumer(config.KafkaConfig{DLQTopic: "flagpost-dlq"}, logger.NopLogger())
	c.dlqProducer = dlq

	err := c.sendToDLQ(context.Background(), models.MessageEnvelope{ID: "m1"}, errors.New("handler failed"), "catalog-updates")
	require.NoError(t, err)

	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "flagpost-dlq", dlq.topic)
	require.NotNil(t, dlq.msgs[0].Metadata.DLQ)
	assert.Equal(t, "handler failed", dlq.msgs[0].Metadata.DLQ.Reason)
	assert.Equal(t, "catalog-updates", dlq.msgs[0].Metadata.DLQ.SourceTopic)
}
