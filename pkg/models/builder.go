package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageEnvelopeBuilder struct {
	envelope MessageEnvelope
	err      error
}

func NewMessageEnvelopeBuilder(messageType string) *MessageEnvelopeBuilder {
	return &MessageEnvelopeBuilder{
		envelope: MessageEnvelope{Type: messageType},
	}
}

func (b *MessageEnvelopeBuilder) WithID(id string) *MessageEnvelopeBuilder {
	b.envelope.ID = id
	return b
}

func (b *MessageEnvelopeBuilder) WithSource(source string) *MessageEnvelopeBuilder {
	b.envelope.Source = source
	return b
}

func (b *MessageEnvelopeBuilder) WithTimestamp(timestamp time.Time) *MessageEnvelopeBuilder {
	b.envelope.Timestamp = timestamp
	return b
}

func (b *MessageEnvelopeBuilder) WithPayload(payload interface{}) *MessageEnvelopeBuilder {
	raw, err := json.Marshal(payload)
	if err != nil {
		b.err = fmt.Errorf("failed to marshal %s payload: %w", b.envelope.Type, err)
		return b
	}
	b.envelope.Payload = raw
	return b
}

func (b *MessageEnvelopeBuilder) WithTraceID(traceID string) *MessageEnvelopeBuilder {
	b.envelope.Metadata.TraceID = traceID
	return b
}

// Build fills a random ID and the current time when they were not set.
func (b *MessageEnvelopeBuilder) Build() (MessageEnvelope, error) {
	if b.err != nil {
		return MessageEnvelope{}, b.err
	}
	if b.envelope.ID == "" {
		b.envelope.ID = uuid.NewString()
	}
	if b.envelope.Timestamp.IsZero() {
		b.envelope.Timestamp = time.Now().UTC()
	}
	if err := ValidateMessageEnvelope(&b.envelope); err != nil {
		return MessageEnvelope{}, err
	}
	return b.envelope, nil
}
