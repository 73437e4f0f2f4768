package management

import (
	"context"
)

type Service interface {
	CreateAlert(ctx context.Context, req CreateAlertRequest) (*Alert, error)
	ListAlerts(ctx context.Context) ([]Alert, error)
	GetAlert(ctx context.Context, id string) (*Alert, error)
	UpdateAlert(ctx context.Context, id string, req UpdateAlertRequest) (*Alert, error)
	DeleteAlert(ctx context.Context, id string) error

	CreateFeature(ctx context.Context, req CreateFeatureRequest) (*Feature, error)
	ListFeatures(ctx context.Context) ([]Feature, error)
	GetFeature(ctx context.Context, id string) (*Feature, error)
	UpdateFeature(ctx context.Context, id string, req UpdateFeatureRequest) (*Feature, error)
	DeleteFeature(ctx context.Context, id string) error

	GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error)
}

// CatalogEventPublisher is implemented by CatalogEventProducer.
type CatalogEventPublisher interface {
	PublishCatalogUpdate(ctx context.Context, entityType, action, entityID, entityName, changedBy string) error
}
