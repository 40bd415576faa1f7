package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	r := newEngine(RequestIDMiddleware())
	var seen string
	r.GET("/", func(c *gin.Context) { seen = c.GetString("request_id") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := newEngine(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {})

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}

func TestRealIPHeaders(t *testing.T) {
	r := newEngine(RealIP())
	var seen string
	r.GET("/", func(c *gin.Context) { seen = c.GetString("real_ip") })

	cases := []struct {
		header, value, want string
	}{
		{"CF-Connecting-IP", "203.0.113.7", "203.0.113.7"},
		{"X-Real-IP", "198.51.100.2", "198.51.100.2"},
		{"X-Forwarded-For", "192.0.2.1, 10.0.0.1", "192.0.2.1"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tc.header, tc.value)
		r.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, tc.want, seen, tc.header)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "garbage")
	req.RemoteAddr = "192.0.2.99:1234"
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "192.0.2.99", seen)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := newEngine(Timeout(time.Second))
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) { _, hasDeadline = c.Request.Context().Deadline() })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestTimeoutDisabled(t *testing.T) {
	r := newEngine(Timeout(0))
	hasDeadline := true
	r.GET("/", func(c *gin.Context) { _, hasDeadline = c.Request.Context().Deadline() })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, hasDeadline)
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := newEngine(RateLimit(nil, 1, time.Minute, KeyByIP(), nil))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestAllowFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, OnlyWrites()(ctx))
	ctx.Request = httptest.NewRequest(http.MethodPut, "/", nil)
	assert.False(t, OnlyWrites()(ctx))

	ctx.Set("real_ip", "10.1.2.3")
	assert.True(t, AllowPrivateIP()(ctx))
	ctx.Set("real_ip", "203.0.113.7")
	assert.False(t, AllowPrivateIP()(ctx))
}

func TestKeyFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	ctx.Set("real_ip", "203.0.113.7")

	assert.Equal(t, "rl:ip:203.0.113.7", KeyByIP()(ctx))
	assert.Equal(t, "rl:path:/api/users:ip:203.0.113.7", KeyByIPAndPath()(ctx))
	assert.Equal(t, 3, toInt(int64(3)))
	assert.Equal(t, 4, toInt("4"))
}
