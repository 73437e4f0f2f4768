package evaluation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagpost/internal/logger"
	"flagpost/internal/targeting"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	alerts   []targeting.Alert
	features []targeting.FeatureToggle
	err      error

	mu        sync.Mutex
	requested [][]string
}

func (f *fakeCatalog) ListActiveAlerts(_ context.Context, _ time.Time) ([]targeting.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.alerts, nil
}

func (f *fakeCatalog) ListFeatureTogglesByName(_ context.Context, names []string) ([]targeting.FeatureToggle, error) {
	f.mu.Lock()
	f.requested = append(f.requested, names)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.features, nil
}

func (f *fakeCatalog) CountActiveFeatures(_ context.Context, now time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, t := range f.features {
		if t.Enabled && !now.Before(t.ActiveFrom) && !now.After(t.ActiveTo) {
			n++
		}
	}
	return n, nil
}

type fakeCache struct {
	hit        map[string]bool
	generation int64
	stored     map[string]bool
	storedGen  int64
}

func (f *fakeCache) Lookup(context.Context, *targeting.UserContext, []string) (map[string]bool, int64, bool) {
	if f.hit == nil {
		return nil, f.generation, false
	}
	return f.hit, f.generation, true
}

func (f *fakeCache) Store(_ context.Context, generation int64, _ *targeting.UserContext, _ []string, results map[string]bool) {
	f.storedGen = generation
	f.stored = results
}

type publishedCheck struct {
	names     []string
	decisions map[string]targeting.Decision
	degraded  bool
}

type fakePublisher struct {
	calls []publishedCheck
}

func (f *fakePublisher) PublishFeatureCheck(_ context.Context, _ *targeting.UserContext, names []string, decisions map[string]targeting.Decision, degraded bool) {
	f.calls = append(f.calls, publishedCheck{names: names, decisions: decisions, degraded: degraded})
}

func toggle(name string) targeting.FeatureToggle {
	return targeting.FeatureToggle{
		ID:                name + "-id",
		Name:              name,
		Enabled:           true,
		Environment:       targeting.EnvironmentAll,
		RolloutPercentage: 100,
		ActiveFrom:        testNow.Add(-time.Hour),
		ActiveTo:          testNow.Add(time.Hour),
	}
}

func newTestService(cat *fakeCatalog, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(cat, logger.NopLogger(), opts...)
}

func TestCheckFeatures_EvaluatesAndCaches(t *testing.T) {
	off := toggle("dark-mode")
	off.Enabled = false
	cat := &fakeCatalog{features: []targeting.FeatureToggle{toggle("new-checkout"), off}}
	cache := &fakeCache{generation: 3}
	pub := &fakePublisher{}

	svc := newTestService(cat, WithResultCache(cache), WithDecisionPublisher(pub))
	res := svc.CheckFeatures(context.Background(), []string{"new-checkout", "dark-mode", "missing"}, nil)

	assert.Equal(t, map[string]bool{"new-checkout": true, "dark-mode": false, "missing": false}, res.Features)
	assert.False(t, res.Cached)
	assert.False(t, res.Degraded)
	assert.Equal(t, res.Features, cache.stored)
	assert.Equal(t, int64(3), cache.storedGen)

	require.Len(t, pub.calls, 1)
	assert.False(t, pub.calls[0].degraded)
	assert.Equal(t, targeting.GateDisabled, pub.calls[0].decisions["dark-mode"].Gate)
	assert.Equal(t, targeting.GateNotFound, pub.calls[0].decisions["missing"].Gate)
}

func TestCheckFeatures_CacheHitSkipsCatalog(t *testing.T) {
	cat := &fakeCatalog{}
	cache := &fakeCache{hit: map[string]bool{"new-checkout": true}}
	pub := &fakePublisher{}

	svc := newTestService(cat, WithResultCache(cache), WithDecisionPublisher(pub))
	res := svc.CheckFeatures(context.Background(), []string{"new-checkout"}, nil)

	assert.True(t, res.Cached)
	assert.Equal(t, map[string]bool{"new-checkout": true}, res.Features)
	assert.Empty(t, cat.requested)
	assert.Empty(t, pub.calls)
}

func TestCheckFeatures_CatalogFailureDegrades(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("connection refused")}
	cache := &fakeCache{}
	pub := &fakePublisher{}

	svc := newTestService(cat, WithResultCache(cache), WithDecisionPublisher(pub))
	res := svc.CheckFeatures(context.Background(), []string{"a", "b"}, &targeting.UserContext{UserID: "u1"})

	assert.True(t, res.Degraded)
	assert.Equal(t, map[string]bool{"a": false, "b": false}, res.Features)
	assert.Nil(t, cache.stored)
	require.Len(t, pub.calls, 1)
	assert.True(t, pub.calls[0].degraded)
}

func TestCheckFeatures_EmptyRequest(t *testing.T) {
	svc := newTestService(&fakeCatalog{})
	res := svc.CheckFeatures(context.Background(), []string{}, nil)

	assert.NotNil(t, res.Features)
	assert.Empty(t, res.Features)
}

func TestCheckFeatures_TargetingNeedsUser(t *testing.T) {
	tg := toggle("beta")
	tg.TargetingEnabled = true
	tg.Segments = []targeting.Segment{{PlanTier: "premium"}}
	svc := newTestService(&fakeCatalog{features: []targeting.FeatureToggle{tg}})

	tests := []struct {
		name string
		user *targeting.UserContext
		want bool
	}{
		{"no user", nil, false},
		{"matching user", &targeting.UserContext{UserID: "u1", PlanTier: "premium"}, true},
		{"other tier", &targeting.UserContext{UserID: "u1", PlanTier: "free"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.CheckFeatures(context.Background(), []string{"beta"}, tt.user)
			assert.Equal(t, tt.want, res.Features["beta"])
		})
	}
}

func TestWidgetAlerts(t *testing.T) {
	base := targeting.Alert{
		Enabled:    true,
		Theme:      "info",
		ActiveFrom: testNow.Add(-time.Hour),
		ActiveTo:   testNow.Add(time.Hour),
	}
	general := base
	general.ID, general.Title = "a1", "Maintenance"
	premium := base
	premium.ID, premium.Title = "a2", "Premium perks"
	premium.TargetingEnabled = true
	premium.Segments = []targeting.Segment{{PlanTier: "premium"}}

	svc := newTestService(&fakeCatalog{alerts: []targeting.Alert{general, premium}})

	anon := svc.WidgetAlerts(context.Background(), nil)
	require.Len(t, anon, 1)
	assert.Equal(t, "a1", anon[0].ID)

	views := svc.WidgetAlerts(context.Background(), &targeting.UserContext{PlanTier: "premium"})
	require.Len(t, views, 2)
	assert.Equal(t, "a1", views[0].ID)
	assert.Equal(t, "a2", views[1].ID)
}

func TestWidgetAlerts_CatalogFailureReturnsEmpty(t *testing.T) {
	svc := newTestService(&fakeCatalog{err: errors.New("timeout")})

	views := svc.WidgetAlerts(context.Background(), nil)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestActiveFeatures(t *testing.T) {
	expired := toggle("old")
	expired.ActiveTo = testNow.Add(-time.Minute)
	svc := newTestService(&fakeCatalog{features: []targeting.FeatureToggle{toggle("a"), toggle("b"), expired}})

	n, err := svc.ActiveFeatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = newTestService(&fakeCatalog{err: errors.New("down")}).ActiveFeatures(context.Background())
	require.Error(t, err)
}

func TestCheckFeatures_StalledBrokerDoesNotDelayResponse(t *testing.T) {
	producer := &stalledProducer{}
	events := newDecisionEvents(producer, "feature-decisions", logger.NopLogger(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go events.Run(ctx)

	cat := &fakeCatalog{features: []targeting.FeatureToggle{toggle("new-checkout")}}
	svc := newTestService(cat, WithDecisionPublisher(events))

	svc.CheckFeatures(context.Background(), []string{"new-checkout"}, nil)
	require.Eventually(t, func() bool { return producer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	start := time.Now()
	for i := 0; i < 5; i++ {
		res := svc.CheckFeatures(context.Background(), []string{"new-checkout"}, nil)
		assert.True(t, res.Features["new-checkout"])
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.Len(t, events.queue, 1)
}
