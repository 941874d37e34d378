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
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(manager).RequireAuth(), func(c *gin.Context) {
		id, ok := GetIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id.UserID, "username": id.Username})
	})

	token, err := manager.GenerateToken(42, "alice")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"缺少Header", "", http.StatusUnauthorized, `{"message":"No token provided"}`},
		{"格式错误", "Bearer abc.def", http.StatusUnauthorized, `{"message":"Invalid or expired token"}`},
		{"有效Token", "Bearer " + token.AccessToken, http.StatusOK, `{"id":42,"username":"alice"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(r, req)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestGetIdentity_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetIdentity(c)
	assert.False(t, ok)
	assert.Zero(t, GetUserID(c))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"), "突发额度用尽")
	assert.True(t, rl.Allow("2.2.2.2"), "不同IP互不影响")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"), "按速率补充令牌")

	// 空闲超过TTL后被回收
	now = now.Add(limiterIdleTTL + time.Second)
	rl.Allow("3.3.3.3")
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "3.3.3.3")
}

func TestTimeout(t *testing.T) {
	handler := func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	}

	r := gin.New()
	r.GET("/with", Timeout(time.Second), handler)
	r.GET("/without", Timeout(0), handler)

	assert.JSONEq(t, `{"deadline":true}`, serve(r, httptest.NewRequest(http.MethodGet, "/with", nil)).Body.String())
	assert.JSONEq(t, `{"deadline":false}`, serve(r, httptest.NewRequest(http.MethodGet, "/without", nil)).Body.String())
}

func TestLogger_RequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("沿用客户端ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		w := serve(r, req)
		assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	})

	t.Run("生成新ID", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.Len())
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		AllowOrigins:     []string{"http://app.local"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization"},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/books", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return serve(r, req)
	}

	t.Run("无Origin直接放行", func(t *testing.T) {
		w := request(http.MethodGet, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("白名单来源", func(t *testing.T) {
		w := request(http.MethodGet, "http://app.local")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("预检请求", func(t *testing.T) {
		w := request(http.MethodOptions, "http://app.local")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("未知来源", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, request(http.MethodGet, "http://evil.local").Code)
	})
}
