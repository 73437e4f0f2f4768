package targeting

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden vectors shared with other implementations of the rollout hash.
func TestBucket_GoldenVectors(t *testing.T) {
	tests := []struct {
		userID  string
		feature string
		bucket  int
	}{
		{"u1", "f1", 65},
		{"u1", "f2", 66},
		{"anonymous", "new-dashboard", 70},
		{"user-123", "dark-mode", 80},
		{"user-456", "dark-mode", 71},
		{"user-123", "new-dashboard", 7},
		{"alice", "beta-checkout", 79},
		{"a", "b", 13},
		{"usér", "fünf", 9},
		{"😀", "emoji", 25},
	}

	for _, tt := range tests {
		t.Run(tt.userID+":"+tt.feature, func(t *testing.T) {
			assert.Equal(t, tt.bucket, Bucket(tt.userID, tt.feature))
		})
	}
}

func TestRollingHash_Wraparound(t *testing.T) {
	assert.Equal(t, int32(109570665), rollingHash("u1:f1"))
	assert.Equal(t, int32(-2113221680), rollingHash("user-123:dark-mode"))
	assert.Equal(t, int32(-828257425), rollingHash("😀:emoji"))
	assert.Equal(t, int32(0), rollingHash(""))
}

func TestBucketOf_MinInt32(t *testing.T) {
	assert.Equal(t, 48, bucketOf(math.MinInt32))
	assert.Equal(t, 47, bucketOf(math.MaxInt32))
	assert.Equal(t, 70, bucketOf(-653570470))
}

func TestBucket_EmptyUserIsAnonymous(t *testing.T) {
	assert.Equal(t, Bucket(AnonymousUserID, "new-dashboard"), Bucket("", "new-dashboard"))
}

func TestBucket_Deterministic(t *testing.T) {
	first := Bucket("user-789", "search-v2")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Bucket("user-789", "search-v2"))
	}
}

func TestBucket_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		b := Bucket(string(rune('a'+i%26))+string(rune(i)), "feature")
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, 100)
	}
}

func TestInRollout(t *testing.T) {
	// user-123/new-dashboard sits in bucket 7.
	assert.True(t, InRollout("user-123", "new-dashboard", 8))
	assert.False(t, InRollout("user-123", "new-dashboard", 7))
	assert.False(t, InRollout("user-123", "new-dashboard", 0))
	assert.True(t, InRollout("user-123", "new-dashboard", 100))
}

func TestBucket_UnpairedSurrogateHashesAsReplacementChar(t *testing.T) {
	var id string
	require.NoError(t, json.Unmarshal([]byte(`"\ud800x"`), &id))
	assert.Equal(t, "\uFFFDx", id)

	// 0xFFFD is hashed in place of 0xD800, which would give bucket 89.
	assert.Equal(t, 94, Bucket(id, "new-checkout"))
}
