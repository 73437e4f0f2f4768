package models

import "time"

const (
	EventTypeCatalogUpdated = "catalog_updated"
	EventTypeFeatureCheck   = "feature_check"
)

const (
	EntityTypeAlert   = "alert"
	EntityTypeFeature = "feature"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// CatalogUpdateEvent announces a change to an alert or feature toggle.
type CatalogUpdateEvent struct {
	EventType  string    `json:"event_type"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name,omitempty"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	ChangedBy  string    `json:"changed_by,omitempty"`
}

// FeatureCheckEvent records the outcome of one check-features call.
type FeatureCheckEvent struct {
	UserID      string            `json:"userId"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Environment string            `json:"environment"`
	Decisions   []FeatureDecision `json:"decisions"`
	Degraded    bool              `json:"degraded,omitempty"`
	EvaluatedAt time.Time         `json:"evaluatedAt"`
}

type FeatureDecision struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Gate    string `json:"gate,omitempty"`
}
