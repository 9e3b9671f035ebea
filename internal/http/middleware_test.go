package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmin/shelfmate/internal/config"
)

func TestRateLimiterThrottles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(config.RateLimit{PerSecond: 1, Burst: 2})
	router := gin.New()
	router.Use(rl.Handler())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, recorder.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(config.RateLimit{PerSecond: 1, Burst: 1})
	rl.limiterFor("10.0.0.1")
	rl.limiterFor("10.0.0.2")

	// Age one visitor and the sweep clock past the TTL.
	stale := time.Now().Add(-2 * visitorIdleTTL)
	rl.mu.Lock()
	rl.visitors["10.0.0.1"].lastSeen = stale
	rl.lastSweep = stale
	rl.mu.Unlock()

	rl.limiterFor("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
