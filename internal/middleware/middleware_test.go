package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/generate", RateLimit(rdb, "generate", 10*time.Second), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.RemoteAddr = ip + ":1234"
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := limitedRouter(rdb)

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)

	resp := hit(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "10", resp.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":"too many requests, try again later"}`, resp.Body.String())

	// other clients are unaffected
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2").Code)

	mr.FastForward(11 * time.Second)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
}

func TestRateLimitReleasesSlotOnServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/generate", RateLimit(rdb, "generate", 10*time.Second), func(c *gin.Context) {
		c.Status(http.StatusServiceUnavailable)
	})

	assert.Equal(t, http.StatusServiceUnavailable, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusServiceUnavailable, hit(r, "10.0.0.1").Code)
	assert.Empty(t, mr.Keys())
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	r := limitedRouter(nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	}
}

func TestRateLimitFailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	r := limitedRouter(rdb)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := resp.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, resp.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "abc-123", resp.Header().Get(RequestIDHeader))
}
