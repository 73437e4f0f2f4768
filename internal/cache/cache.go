package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"flagpost/internal/constants"
	"flagpost/internal/logger"
	"flagpost/internal/targeting"
	"flagpost/pkg/metrics"
)

// FeatureResultCache stores check-features results. Failures are logged and
// treated as misses; the cache never fails a request.
type FeatureResultCache struct {
	repo   Repository
	ttl    time.Duration
	logger logger.Logger
}

func NewFeatureResultCache(repo Repository, ttl time.Duration, log logger.Logger) *FeatureResultCache {
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTLSeconds * time.Second
	}
	return &FeatureResultCache{repo: repo, ttl: ttl, logger: log}
}

// Lookup returns the cached results and the generation they were read at.
// Callers pass that generation back to Store. A negative generation means it
// could not be read and the result must not be stored.
func (c *FeatureResultCache) Lookup(ctx context.Context, user *targeting.UserContext, features []string) (map[string]bool, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Result cache generation unavailable", "error", err)
		metrics.IncResultCache(false)
		return nil, -1, false
	}
	key := FeatureKey(gen, user, features)

	raw, found, err := c.repo.Get(ctx, key)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Result cache lookup failed", "key", key, "error", err)
		metrics.IncResultCache(false)
		return nil, gen, false
	}
	if !found {
		metrics.IncResultCache(false)
		return nil, gen, false
	}

	var results map[string]bool
	if err := json.Unmarshal(raw, &results); err != nil {
		c.logger.WarnwCtx(ctx, "Discarding undecodable cache entry", "key", key, "error", err)
		metrics.IncResultCache(false)
		return nil, gen, false
	}

	metrics.IncResultCache(true)
	return results, gen, true
}

// Store writes results under generation. If an invalidation bumped the
// generation in the meantime the entry is unreachable and simply expires.
func (c *FeatureResultCache) Store(ctx context.Context, generation int64, user *targeting.UserContext, features []string, results map[string]bool) {
	if generation < 0 {
		return
	}
	key := FeatureKey(generation, user, features)

	raw, err := json.Marshal(results)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Failed to encode feature results", "error", err)
		return
	}
	if err := c.repo.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnwCtx(ctx, "Result cache store failed", "key", key, "error", err)
	}
}

// Invalidate advances the cache generation and drops every cached feature
// result. It fails only when the generation could not be advanced.
func (c *FeatureResultCache) Invalidate(ctx context.Context) (int, error) {
	if _, err := c.repo.Incr(ctx, constants.CacheKeyFeatureGeneration); err != nil {
		return 0, err
	}

	n, err := c.repo.DeletePrefix(ctx, constants.CacheKeyPrefixFeatures)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Failed to delete superseded cache entries", "error", err)
		return n, nil
	}

	if size, err := c.repo.Size(ctx, constants.CacheKeyPrefixFeatures); err == nil {
		metrics.SetResultCacheSize(size)
	}
	return n, nil
}

func (c *FeatureResultCache) generation(ctx context.Context) (int64, error) {
	raw, found, err := c.repo.Get(ctx, constants.CacheKeyFeatureGeneration)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cache generation %q: %w", raw, err)
	}
	return gen, nil
}
