package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"flagpost/internal/config"
	"flagpost/pkg/logging"
)

func TestInfowCtx_AddsContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromCore(core, "evaluation-service")

	ctx := logging.WithRequestID(context.Background(), "req-1")
	ctx = logging.WithTraceID(ctx, "trace-1")

	log.InfowCtx(ctx, "checked features", "count", 3)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "evaluation-service", fields["service_name"])
	assert.Equal(t, int64(3), fields["count"])
}

func TestInfowCtx_ContextServiceNameWins(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewFromCore(core, "default-name")

	ctx := logging.WithServiceName(context.Background(), "consumer")
	log.WarnwCtx(ctx, "slow")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "consumer", logs.All()[0].ContextMap()["service_name"])
}

func TestWith_KeepsServiceName(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewFromCore(core, "svc").With("component", "cache")

	log.ErrorwCtx(context.Background(), "boom")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "cache", fields["component"])
	assert.Equal(t, "svc", fields["service_name"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNew(t *testing.T) {
	log, err := New(config.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
