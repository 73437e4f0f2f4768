package management

import (
	"context"
	"time"

	"flagpost/internal/broker"
	"flagpost/internal/constants"
	"flagpost/pkg/models"
)

// CatalogEventProducer announces catalog mutations so evaluators can drop
// cached results.
type CatalogEventProducer struct {
	producer broker.Producer
	topic    string
}

func NewCatalogEventProducer(producer broker.Producer, topic string) *CatalogEventProducer {
	return &CatalogEventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *CatalogEventProducer) PublishCatalogUpdate(ctx context.Context, entityType, action, entityID, entityName, changedBy string) error {
	if p.producer == nil || p.topic == "" {
		return nil
	}

	envelope, err := models.NewCatalogUpdateEnvelope(constants.ServiceManagement, models.CatalogUpdateEvent{
		EventType:  models.EventTypeCatalogUpdated,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Action:     action,
		Timestamp:  time.Now().UTC(),
		ChangedBy:  changedBy,
	})
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, p.topic, envelope)
}
