package evaluation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"flagpost/internal/catalog"
	"flagpost/internal/constants"
	"flagpost/internal/logger"
	"flagpost/internal/targeting"
	"flagpost/pkg/errors"
	"flagpost/pkg/metrics"
	"flagpost/pkg/tracing"
)

// Service answers check-features and widget-alerts requests. Catalog
// failures degrade to the safe default instead of surfacing to the caller.
type Service struct {
	catalog catalog.Repository
	cache   ResultCache
	events  DecisionPublisher
	now     func() time.Time
	logger  logger.Logger
}

type Option func(*Service)

func WithResultCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithDecisionPublisher(p DecisionPublisher) Option {
	return func(s *Service) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo catalog.Repository, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		catalog: repo,
		now:     time.Now,
		logger:  log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FeatureCheckResult is the outcome of CheckFeatures.
type FeatureCheckResult struct {
	Features map[string]bool
	Cached   bool
	Degraded bool
}

func (s *Service) CheckFeatures(ctx context.Context, names []string, user *targeting.UserContext) FeatureCheckResult {
	ctx, span := tracing.StartSpan(ctx, "evaluation.check_features",
		attribute.Int("features.count", len(names)),
		attribute.Bool("user.present", user != nil),
	)
	defer span.End()

	start := time.Now()
	status := "ok"
	defer func() {
		metrics.ObserveEvaluationDuration("check_features", status, time.Since(start))
	}()

	var generation int64 = -1
	if s.cache != nil {
		cached, gen, ok := s.cache.Lookup(ctx, user, names)
		if ok {
			status = "cached"
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return FeatureCheckResult{Features: cached, Cached: true}
		}
		generation = gen
	}

	toggles, err := s.catalog.ListFeatureTogglesByName(ctx, names)
	if err != nil {
		status = "degraded"
		tracing.RecordError(span, err)
		metrics.IncFallback(constants.ServiceEvaluation, "all_disabled", "catalog_unavailable")
		s.logger.WarnwCtx(ctx, "Catalog unavailable, reporting all features disabled",
			"features", len(names),
			"error", err,
		)

		decisions := make(map[string]targeting.Decision, len(names))
		results := make(map[string]bool, len(names))
		for _, name := range names {
			decisions[name] = targeting.Decision{}
			results[name] = false
		}
		s.publish(ctx, user, names, decisions, true)
		return FeatureCheckResult{Features: results, Degraded: true}
	}

	decisions := targeting.ExplainFeatures(names, toggles, user, s.now())
	results := make(map[string]bool, len(decisions))
	for name, d := range decisions {
		results[name] = d.Enabled
		metrics.IncFeatureEvaluation(d.Enabled, string(d.Gate))
	}

	if s.cache != nil {
		s.cache.Store(ctx, generation, user, names, results)
	}
	s.publish(ctx, user, names, decisions, false)

	return FeatureCheckResult{Features: results}
}

func (s *Service) publish(ctx context.Context, user *targeting.UserContext, names []string, decisions map[string]targeting.Decision, degraded bool) {
	if s.events == nil {
		return
	}
	s.events.PublishFeatureCheck(ctx, user, names, decisions, degraded)
}

// WidgetAlerts returns the alerts visible to user, newest first. A nil user
// only sees untargeted alerts.
func (s *Service) WidgetAlerts(ctx context.Context, user *targeting.UserContext) []targeting.AlertView {
	ctx, span := tracing.StartSpan(ctx, "evaluation.widget_alerts",
		attribute.Bool("user.present", user != nil),
	)
	defer span.End()

	start := time.Now()
	now := s.now()

	alerts, err := s.catalog.ListActiveAlerts(ctx, now)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.IncFallback(constants.ServiceEvaluation, "no_alerts", "catalog_unavailable")
		metrics.ObserveEvaluationDuration("widget_alerts", "degraded", time.Since(start))
		s.logger.WarnwCtx(ctx, "Catalog unavailable, returning no alerts", "error", err)
		return []targeting.AlertView{}
	}

	views := targeting.EvaluateAlerts(alerts, user, now)
	metrics.AddAlertEvaluations(len(views), len(alerts)-len(views))
	metrics.ObserveEvaluationDuration("widget_alerts", "ok", time.Since(start))
	span.SetAttributes(attribute.Int("alerts.visible", len(views)))

	return views
}

// ActiveFeatures counts enabled toggles inside their window.
func (s *Service) ActiveFeatures(ctx context.Context) (int, error) {
	count, err := s.catalog.CountActiveFeatures(ctx, s.now())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrServiceUnavailable)
	}
	metrics.SetActiveFeatures(count)
	return count, nil
}

// Now is the clock used for evaluations.
func (s *Service) Now() time.Time {
	return s.now()
}
