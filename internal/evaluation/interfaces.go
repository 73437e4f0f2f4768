package evaluation

import (
	"context"

	"flagpost/internal/targeting"
)

// ResultCache caches check-features results. Implementations swallow their
// own failures. Lookup reports the cache generation it read; Store must be
// given that generation so a result computed before an invalidation is never
// served after it.
type ResultCache interface {
	Lookup(ctx context.Context, user *targeting.UserContext, features []string) (map[string]bool, int64, bool)
	Store(ctx context.Context, generation int64, user *targeting.UserContext, features []string, results map[string]bool)
}

// DecisionPublisher records feature decisions for downstream analysis.
type DecisionPublisher interface {
	PublishFeatureCheck(ctx context.Context, user *targeting.UserContext, names []string, decisions map[string]targeting.Decision, degraded bool)
}
