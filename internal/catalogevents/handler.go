package catalogevents

import (
	"context"

	"flagpost/internal/logger"
	"flagpost/pkg/metrics"
	"flagpost/pkg/models"
	"flagpost/pkg/retry"
)

// Invalidator drops cached evaluation results.
type Invalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

// Handler consumes catalog_updated events and invalidates the result cache.
type Handler struct {
	invalidator Invalidator
	logger      logger.Logger
}

func NewHandler(invalidator Invalidator, log logger.Logger) *Handler {
	return &Handler{invalidator: invalidator, logger: log}
}

// HandleCatalogUpdate ignores envelopes of other types. A malformed event is
// fatal and goes straight to the DLQ; an invalidation failure is retried.
func (h *Handler) HandleCatalogUpdate(ctx context.Context, envelope models.MessageEnvelope) error {
	if envelope.Type != models.EventTypeCatalogUpdated {
		return nil
	}

	var event models.CatalogUpdateEvent
	if err := envelope.DecodePayload(&event); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to decode catalog event", "error", err, "id", envelope.ID)
		metrics.IncCatalogEvent("unknown", "invalid")
		return retry.NewFatalError(err)
	}
	if err := models.ValidateCatalogUpdateEvent(&event); err != nil {
		h.logger.ErrorwCtx(ctx, "Invalid catalog event", "error", err, "id", envelope.ID)
		metrics.IncCatalogEvent(event.EntityType, "invalid")
		return retry.NewFatalError(err)
	}

	h.logger.InfowCtx(ctx, "Received catalog update event",
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"action", event.Action,
	)

	if h.invalidator == nil {
		metrics.IncCatalogEvent(event.EntityType, "ignored")
		return nil
	}

	removed, err := h.invalidator.Invalidate(ctx)
	if err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to invalidate result cache", "error", err)
		metrics.IncCatalogEvent(event.EntityType, "error")
		return err
	}

	metrics.IncCatalogEvent(event.EntityType, "invalidated")
	h.logger.InfowCtx(ctx, "Result cache invalidated", "removed", removed)
	return nil
}
