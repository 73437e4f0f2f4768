package models

import (
	"encoding/json"
	"time"
)

// MessageEnvelope is the wire format of every message on the broker.
type MessageEnvelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Metadata  Metadata        `json:"metadata"`
}

type Metadata struct {
	TraceID string   `json:"trace_id,omitempty"`
	DLQ     *DLQInfo `json:"dlq,omitempty"`
}

type DLQInfo struct {
	Reason      string    `json:"reason"`
	SourceTopic string    `json:"source_topic"`
	FailedAt    time.Time `json:"failed_at"`
}

// DecodePayload unmarshals the payload into v.
func (m *MessageEnvelope) DecodePayload(v interface{}) error {
	if len(m.Payload) == 0 {
		return &ValidationError{Field: "payload", Message: "message payload is empty"}
	}
	return json.Unmarshal(m.Payload, v)
}
