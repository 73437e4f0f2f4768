package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FillsIDAndTimestamp(t *testing.T) {
	env, err := NewMessageEnvelopeBuilder(EventTypeFeatureCheck).
		WithSource("evaluation-service").
		WithPayload(FeatureCheckEvent{UserID: "u1"}).
		WithTraceID("trace-1").
		Build()

	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.Timestamp.IsZero())
	assert.Equal(t, "trace-1", env.Metadata.TraceID)

	var evt FeatureCheckEvent
	require.NoError(t, env.DecodePayload(&evt))
	assert.Equal(t, "u1", evt.UserID)
}

func TestBuilder_MissingSource(t *testing.T) {
	_, err := NewMessageEnvelopeBuilder(EventTypeFeatureCheck).WithPayload(map[string]string{}).Build()

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "source", vErr.Field)
}

func TestBuilder_UnmarshalablePayload(t *testing.T) {
	_, err := NewMessageEnvelopeBuilder(EventTypeFeatureCheck).
		WithSource("x").
		WithPayload(make(chan int)).
		Build()
	assert.Error(t, err)
}

func TestNewCatalogUpdateEnvelope(t *testing.T) {
	ts := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	env, err := NewCatalogUpdateEnvelope("management-service", CatalogUpdateEvent{
		EntityType: EntityTypeFeature,
		EntityID:   "f-1",
		EntityName: "dark-mode",
		Action:     ActionUpdate,
		Timestamp:  ts,
	})
	require.NoError(t, err)
	assert.Equal(t, EventTypeCatalogUpdated, env.Type)
	assert.Equal(t, ts, env.Timestamp)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded MessageEnvelope
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var evt CatalogUpdateEvent
	require.NoError(t, decoded.DecodePayload(&evt))
	assert.Equal(t, EventTypeCatalogUpdated, evt.EventType)
	assert.NoError(t, ValidateCatalogUpdateEvent(&evt))
}

func TestValidateCatalogUpdateEvent(t *testing.T) {
	tests := []struct {
		name  string
		evt   CatalogUpdateEvent
		field string
	}{
		{"wrong type", CatalogUpdateEvent{EventType: "x", EntityType: EntityTypeAlert, Action: ActionCreate}, "event_type"},
		{"unknown entity", CatalogUpdateEvent{EventType: EventTypeCatalogUpdated, EntityType: "rule", Action: ActionCreate}, "entity_type"},
		{"unknown action", CatalogUpdateEvent{EventType: EventTypeCatalogUpdated, EntityType: EntityTypeAlert, Action: "toggle"}, "action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalogUpdateEvent(&tt.evt)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestDecodePayload_Empty(t *testing.T) {
	var env MessageEnvelope
	var out map[string]interface{}
	assert.Error(t, env.DecodePayload(&out))
}
