package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filevault/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	rl := newRateLimiter(time.Minute, 2)

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))

	// Each client has its own bucket.
	assert.True(t, rl.allow("5.6.7.8"))
}

func TestRateLimitMiddlewareNonPositiveBudget(t *testing.T) {
	prev := config.AppConfig
	defer func() { config.AppConfig = prev }()

	config.AppConfig = &config.Config{
		RateLimitEnabled:  true,
		RateLimitRequests: 0,
		RateLimitWindow:   time.Minute,
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// A zero budget disables limiting instead of rejecting every request.
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
