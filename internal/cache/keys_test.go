package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"flagpost/internal/constants"
	"flagpost/internal/targeting"
)

func TestFeatureKey(t *testing.T) {
	premium := &targeting.UserContext{UserID: "u1", PlanTier: "premium"}

	t.Run("prefix and generation", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(FeatureKey(0, premium, []string{"a"}), "features:0:"))
		assert.True(t, strings.HasPrefix(FeatureKey(12, premium, []string{"a"}), "features:12:"))
	})

	t.Run("generation changes the key", func(t *testing.T) {
		assert.NotEqual(t, FeatureKey(1, premium, []string{"a"}), FeatureKey(2, premium, []string{"a"}))
	})

	t.Run("generation key is outside the entry prefix", func(t *testing.T) {
		assert.False(t, strings.HasPrefix(constants.CacheKeyFeatureGeneration, constants.CacheKeyPrefixFeatures))
	})

	t.Run("feature order and duplicates do not matter", func(t *testing.T) {
		assert.Equal(t,
			FeatureKey(0, premium, []string{"b", "a", "b"}),
			FeatureKey(0, premium, []string{"a", "b"}),
		)
	})

	t.Run("any attribute changes the key", func(t *testing.T) {
		base := FeatureKey(0, premium, []string{"a"})
		for _, u := range []*targeting.UserContext{
			{UserID: "u2", PlanTier: "premium"},
			{UserID: "u1", PlanTier: "free"},
			{UserID: "u1", PlanTier: "premium", Environment: "staging"},
			{UserID: "u1", PlanTier: "premium", CurrentPage: "/pricing"},
		} {
			assert.NotEqual(t, base, FeatureKey(0, u, []string{"a"}))
		}
	})

	t.Run("nil user differs from empty user", func(t *testing.T) {
		assert.NotEqual(t, FeatureKey(0, nil, []string{"a"}), FeatureKey(0, &targeting.UserContext{}, []string{"a"}))
	})

	t.Run("field boundaries are kept", func(t *testing.T) {
		a := &targeting.UserContext{UserType: "ab", Location: "c"}
		b := &targeting.UserContext{UserType: "a", Location: "bc"}
		assert.NotEqual(t, FeatureKey(0, a, nil), FeatureKey(0, b, nil))
	})
}
