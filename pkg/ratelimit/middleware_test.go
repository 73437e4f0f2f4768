package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"flagpost/internal/config"
)

func TestStore_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewStore(Config{RPS: 0.001, Burst: 2, CleanupInterval: time.Hour, MaxAge: time.Hour})
	defer store.Stop()

	router := gin.New()
	router.Use(store.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
			assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestStore_EvictIdle(t *testing.T) {
	store := NewStore(Config{RPS: 1, Burst: 1, CleanupInterval: time.Hour, MaxAge: time.Minute})
	defer store.Stop()

	store.Allow("10.0.0.1")
	store.Allow("10.0.0.2")
	assert.Equal(t, 2, store.Len())

	store.evictIdle(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, store.Len())
}

func TestStore_StopTwice(t *testing.T) {
	store := NewStore(DefaultConfig())
	store.Stop()
	assert.NotPanics(t, store.Stop)
}

func TestFromSettings(t *testing.T) {
	c := FromSettings(config.RateLimitConfig{RPS: 50, CleanupInterval: 30})
	assert.Equal(t, 50.0, c.RPS)
	assert.Equal(t, DefaultConfig().Burst, c.Burst)
	assert.Equal(t, 30*time.Second, c.CleanupInterval)
	assert.Equal(t, DefaultConfig().MaxAge, c.MaxAge)
}
