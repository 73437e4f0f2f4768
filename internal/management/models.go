package management

import (
	"time"

	"flagpost/internal/targeting"
)

const (
	ThemeDefault       = "default"
	DefaultEnvironment = "all"
	FullRollout        = 100
)

type Alert struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Body             string              `json:"body"`
	Theme            string              `json:"theme"`
	IsEnabled        bool                `json:"isEnabled"`
	IsActiveFrom     time.Time           `json:"isActiveFrom"`
	IsActiveTo       time.Time           `json:"isActiveTo"`
	TargetingEnabled bool                `json:"targetingEnabled"`
	TargetSegments   []targeting.Segment `json:"targetSegments"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

type CreateAlertRequest struct {
	Title            string              `json:"title" validate:"required,max=255"`
	Body             string              `json:"body" validate:"required"`
	Theme            string              `json:"theme" validate:"omitempty,oneof=default info success warning error"`
	IsEnabled        *bool               `json:"isEnabled"`
	IsActiveFrom     *time.Time          `json:"isActiveFrom" validate:"required"`
	IsActiveTo       *time.Time          `json:"isActiveTo" validate:"required"`
	TargetingEnabled *bool               `json:"targetingEnabled"`
	TargetSegments   []targeting.Segment `json:"targetSegments"`
}

type UpdateAlertRequest struct {
	Title            *string              `json:"title" validate:"omitnil,min=1,max=255"`
	Body             *string              `json:"body" validate:"omitnil,min=1"`
	Theme            *string              `json:"theme" validate:"omitnil,oneof=default info success warning error"`
	IsEnabled        *bool                `json:"isEnabled"`
	IsActiveFrom     *time.Time           `json:"isActiveFrom"`
	IsActiveTo       *time.Time           `json:"isActiveTo"`
	TargetingEnabled *bool                `json:"targetingEnabled"`
	TargetSegments   *[]targeting.Segment `json:"targetSegments"`
}

type Feature struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	DisplayName       string              `json:"displayName"`
	Description       string              `json:"description,omitempty"`
	IsEnabled         bool                `json:"isEnabled"`
	Environment       string              `json:"environment"`
	RolloutPercentage int                 `json:"rolloutPercentage"`
	IsActiveFrom      time.Time           `json:"isActiveFrom"`
	IsActiveTo        time.Time           `json:"isActiveTo"`
	TargetingEnabled  bool                `json:"targetingEnabled"`
	TargetSegments    []targeting.Segment `json:"targetSegments"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type CreateFeatureRequest struct {
	Name              string              `json:"name" validate:"required,max=255"`
	DisplayName       string              `json:"displayName" validate:"required,max=255"`
	Description       string              `json:"description"`
	IsEnabled         *bool               `json:"isEnabled"`
	Environment       string              `json:"environment" validate:"omitempty,oneof=all development staging production"`
	RolloutPercentage *int                `json:"rolloutPercentage" validate:"omitnil,min=0,max=100"`
	IsActiveFrom      *time.Time          `json:"isActiveFrom" validate:"required"`
	IsActiveTo        *time.Time          `json:"isActiveTo" validate:"required"`
	TargetingEnabled  *bool               `json:"targetingEnabled"`
	TargetSegments    []targeting.Segment `json:"targetSegments"`
}

type UpdateFeatureRequest struct {
	Name              *string              `json:"name" validate:"omitnil,min=1,max=255"`
	DisplayName       *string              `json:"displayName" validate:"omitnil,min=1,max=255"`
	Description       *string              `json:"description"`
	IsEnabled         *bool                `json:"isEnabled"`
	Environment       *string              `json:"environment" validate:"omitnil,oneof=all development staging production"`
	RolloutPercentage *int                 `json:"rolloutPercentage" validate:"omitnil,min=0,max=100"`
	IsActiveFrom      *time.Time           `json:"isActiveFrom"`
	IsActiveTo        *time.Time           `json:"isActiveTo"`
	TargetingEnabled  *bool                `json:"targetingEnabled"`
	TargetSegments    *[]targeting.Segment `json:"targetSegments"`
}

type AuditLog struct {
	ID         string                 `json:"id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Action     string                 `json:"action"`
	Actor      string                 `json:"actor,omitempty"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

type AuditLogFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}
