package management

import (
	"context"

	"flagpost/internal/logger"
	"flagpost/internal/targeting"
	pkgerrors "flagpost/pkg/errors"
	"flagpost/pkg/logging"
	"flagpost/pkg/metrics"
	"flagpost/pkg/models"
)

type service struct {
	repo   Repository
	audit  AuditRepository
	events CatalogEventPublisher
	logger logger.Logger
}

type ServiceOption func(*service)

func WithAudit(audit AuditRepository) ServiceOption {
	return func(s *service) {
		s.audit = audit
	}
}

func WithCatalogEvents(events CatalogEventPublisher) ServiceOption {
	return func(s *service) {
		s.events = events
	}
}

func WithLogger(log logger.Logger) ServiceOption {
	return func(s *service) {
		s.logger = log
	}
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logger.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) CreateAlert(ctx context.Context, req CreateAlertRequest) (*Alert, error) {
	if err := ValidateCreateAlert(req); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeAlert, models.ActionCreate, "invalid")
		return nil, err
	}

	alert := &Alert{
		Title:            req.Title,
		Body:             req.Body,
		Theme:            valueOr(req.Theme, ThemeDefault),
		IsEnabled:        boolOr(req.IsEnabled, true),
		IsActiveFrom:     req.IsActiveFrom.UTC(),
		IsActiveTo:       req.IsActiveTo.UTC(),
		TargetingEnabled: boolOr(req.TargetingEnabled, false),
	}
	alert.TargetSegments = effectiveSegments(alert.TargetingEnabled, req.TargetSegments)

	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeAlert, models.ActionCreate, "error")
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.recordChange(ctx, models.EntityTypeAlert, models.ActionCreate, alert.ID, alert.Title, nil, alert)
	return alert, nil
}

func (s *service) ListAlerts(ctx context.Context) ([]Alert, error) {
	alerts, err := s.repo.ListAlerts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return alerts, nil
}

func (s *service) GetAlert(ctx context.Context, id string) (*Alert, error) {
	alert, err := s.repo.GetAlert(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return alert, nil
}

func (s *service) UpdateAlert(ctx context.Context, id string, req UpdateAlertRequest) (*Alert, error) {
	if err := ValidateUpdateAlert(req); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeAlert, models.ActionUpdate, "invalid")
		return nil, err
	}

	alert, err := s.repo.GetAlert(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	old := *alert

	applyAlertUpdate(alert, req)
	if err := validateWindow(alert.IsActiveFrom, alert.IsActiveTo); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeAlert, models.ActionUpdate, "invalid")
		return nil, err
	}

	replace := req.TargetingEnabled != nil || req.TargetSegments != nil
	if replace {
		var segments []targeting.Segment
		if req.TargetSegments != nil {
			segments = *req.TargetSegments
		}
		alert.TargetSegments = effectiveSegments(alert.TargetingEnabled, segments)
	}

	if err := s.repo.UpdateAlert(ctx, alert, replace); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeAlert, models.ActionUpdate, "error")
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.recordChange(ctx, models.EntityTypeAlert, models.ActionUpdate, alert.ID, alert.Title, &old, alert)
	return alert, nil
}

func (s *service) DeleteAlert(ctx context.Context, id string) error {
	alert, err := s.repo.GetAlert(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	if err := s.repo.DeleteAlert(ctx, id); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeAlert, models.ActionDelete, "error")
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.recordChange(ctx, models.EntityTypeAlert, models.ActionDelete, alert.ID, alert.Title, alert, nil)
	return nil
}

func (s *service) CreateFeature(ctx context.Context, req CreateFeatureRequest) (*Feature, error) {
	if err := ValidateCreateFeature(req); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeFeature, models.ActionCreate, "invalid")
		return nil, err
	}

	feature := &Feature{
		Name:              req.Name,
		DisplayName:       req.DisplayName,
		Description:       req.Description,
		IsEnabled:         boolOr(req.IsEnabled, true),
		Environment:       valueOr(req.Environment, DefaultEnvironment),
		RolloutPercentage: FullRollout,
		IsActiveFrom:      req.IsActiveFrom.UTC(),
		IsActiveTo:        req.IsActiveTo.UTC(),
		TargetingEnabled:  boolOr(req.TargetingEnabled, false),
	}
	if req.RolloutPercentage != nil {
		feature.RolloutPercentage = *req.RolloutPercentage
	}
	feature.TargetSegments = effectiveSegments(feature.TargetingEnabled, req.TargetSegments)

	if err := s.repo.CreateFeature(ctx, feature); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeFeature, models.ActionCreate, mutationStatus(err))
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.recordChange(ctx, models.EntityTypeFeature, models.ActionCreate, feature.ID, feature.Name, nil, feature)
	return feature, nil
}

func (s *service) ListFeatures(ctx context.Context) ([]Feature, error) {
	features, err := s.repo.ListFeatures(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return features, nil
}

func (s *service) GetFeature(ctx context.Context, id string) (*Feature, error) {
	feature, err := s.repo.GetFeature(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return feature, nil
}

func (s *service) UpdateFeature(ctx context.Context, id string, req UpdateFeatureRequest) (*Feature, error) {
	if err := ValidateUpdateFeature(req); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeFeature, models.ActionUpdate, "invalid")
		return nil, err
	}

	feature, err := s.repo.GetFeature(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	old := *feature

	applyFeatureUpdate(feature, req)
	if err := validateWindow(feature.IsActiveFrom, feature.IsActiveTo); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeFeature, models.ActionUpdate, "invalid")
		return nil, err
	}

	replace := req.TargetingEnabled != nil || req.TargetSegments != nil
	if replace {
		var segments []targeting.Segment
		if req.TargetSegments != nil {
			segments = *req.TargetSegments
		}
		feature.TargetSegments = effectiveSegments(feature.TargetingEnabled, segments)
	}

	if err := s.repo.UpdateFeature(ctx, feature, replace); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeFeature, models.ActionUpdate, mutationStatus(err))
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.recordChange(ctx, models.EntityTypeFeature, models.ActionUpdate, feature.ID, feature.Name, &old, feature)
	return feature, nil
}

func (s *service) DeleteFeature(ctx context.Context, id string) error {
	feature, err := s.repo.GetFeature(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	if err := s.repo.DeleteFeature(ctx, id); err != nil {
		metrics.IncCatalogMutation(models.EntityTypeFeature, models.ActionDelete, "error")
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.recordChange(ctx, models.EntityTypeFeature, models.ActionDelete, feature.ID, feature.Name, feature, nil)
	return nil
}

func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error) {
	if s.audit == nil {
		return nil, pkgerrors.ErrInternal.WithMessage("audit logging not enabled")
	}
	if filter.EntityType != "" && filter.EntityType != models.EntityTypeAlert && filter.EntityType != models.EntityTypeFeature {
		return nil, pkgerrors.ErrValidation.WithMessage("entity_type must be one of: alert, feature")
	}
	logs, err := s.audit.ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return logs, nil
}

// recordChange writes the audit row and publishes the catalog event. Neither
// failure undoes the mutation.
func (s *service) recordChange(ctx context.Context, entityType, action, id, name string, oldValue, newValue interface{}) {
	metrics.IncCatalogMutation(entityType, action, "success")
	actor := logging.GetActor(ctx)

	if s.audit != nil {
		entry := AuditLogEntry{
			EntityType: entityType,
			EntityID:   id,
			Action:     action,
			Actor:      actor,
			OldValue:   oldValue,
			NewValue:   newValue,
		}
		if err := s.audit.LogChange(ctx, entry); err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to write audit log",
				"entity_type", entityType,
				"entity_id", id,
				"error", err,
			)
		}
	}

	if s.events != nil {
		if err := s.events.PublishCatalogUpdate(ctx, entityType, action, id, name, actor); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to publish catalog update",
				"entity_type", entityType,
				"entity_id", id,
				"error", err,
			)
		}
	}
}

func applyAlertUpdate(alert *Alert, req UpdateAlertRequest) {
	if req.Title != nil {
		alert.Title = *req.Title
	}
	if req.Body != nil {
		alert.Body = *req.Body
	}
	if req.Theme != nil {
		alert.Theme = *req.Theme
	}
	if req.IsEnabled != nil {
		alert.IsEnabled = *req.IsEnabled
	}
	if req.IsActiveFrom != nil {
		alert.IsActiveFrom = req.IsActiveFrom.UTC()
	}
	if req.IsActiveTo != nil {
		alert.IsActiveTo = req.IsActiveTo.UTC()
	}
	if req.TargetingEnabled != nil {
		alert.TargetingEnabled = *req.TargetingEnabled
	}
}

func applyFeatureUpdate(feature *Feature, req UpdateFeatureRequest) {
	if req.Name != nil {
		feature.Name = *req.Name
	}
	if req.DisplayName != nil {
		feature.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		feature.Description = *req.Description
	}
	if req.IsEnabled != nil {
		feature.IsEnabled = *req.IsEnabled
	}
	if req.Environment != nil {
		feature.Environment = *req.Environment
	}
	if req.RolloutPercentage != nil {
		feature.RolloutPercentage = *req.RolloutPercentage
	}
	if req.IsActiveFrom != nil {
		feature.IsActiveFrom = req.IsActiveFrom.UTC()
	}
	if req.IsActiveTo != nil {
		feature.IsActiveTo = req.IsActiveTo.UTC()
	}
	if req.TargetingEnabled != nil {
		feature.TargetingEnabled = *req.TargetingEnabled
	}
}

// effectiveSegments drops segments when targeting is off.
func effectiveSegments(targetingEnabled bool, segments []targeting.Segment) []targeting.Segment {
	if !targetingEnabled || len(segments) == 0 {
		return []targeting.Segment{}
	}
	out := make([]targeting.Segment, len(segments))
	copy(out, segments)
	return out
}

func mutationStatus(err error) string {
	if pkgerrors.IsConflict(err) {
		return "conflict"
	}
	return "error"
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
