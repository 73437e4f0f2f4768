package models

import (
	"fmt"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateMessageEnvelope(msg *MessageEnvelope) error {
	if msg == nil {
		return &ValidationError{Field: "envelope", Message: "message envelope cannot be nil"}
	}
	if msg.ID == "" {
		return &ValidationError{Field: "id", Message: "message ID is required"}
	}
	if msg.Type == "" {
		return &ValidationError{Field: "type", Message: "message type is required"}
	}
	if msg.Source == "" {
		return &ValidationError{Field: "source", Message: "message source is required"}
	}
	if msg.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "message timestamp is required"}
	}
	return nil
}

// ValidateCatalogUpdateEvent checks the fields consumers rely on.
func ValidateCatalogUpdateEvent(evt *CatalogUpdateEvent) error {
	if evt.EventType != EventTypeCatalogUpdated {
		return &ValidationError{Field: "event_type", Message: fmt.Sprintf("unexpected event type %q", evt.EventType)}
	}
	switch evt.EntityType {
	case EntityTypeAlert, EntityTypeFeature:
	default:
		return &ValidationError{Field: "entity_type", Message: fmt.Sprintf("unknown entity type %q", evt.EntityType)}
	}
	switch evt.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", evt.Action)}
	}
	return nil
}

// NewCatalogUpdateEnvelope wraps evt in an envelope from source.
func NewCatalogUpdateEnvelope(source string, evt CatalogUpdateEvent) (MessageEnvelope, error) {
	if evt.EventType == "" {
		evt.EventType = EventTypeCatalogUpdated
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	return NewMessageEnvelopeBuilder(EventTypeCatalogUpdated).
		WithSource(source).
		WithTimestamp(evt.Timestamp).
		WithPayload(evt).
		Build()
}
