package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestJWTAuth(t *testing.T) {
	jwt.Init("middleware-test-secret-middleware", 5, 1)
	access, err := jwt.GenerateAccessToken("U1")
	require.NoError(t, err)
	refresh, _, err := jwt.GenerateRefreshToken("U1")
	require.NoError(t, err)

	r := newAuthEngine(JWTAuth())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + access, http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"refresh token rejected", "Bearer " + refresh, http.StatusUnauthorized},
		{"valid access token", "Bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "U1", w.Body.String())
			} else {
				assert.Equal(t, errorx.CodeUnauthorized, decodeCode(t, w))
			}
		})
	}
}

func TestJWTAuthWSAcceptsQueryToken(t *testing.T) {
	jwt.Init("middleware-test-secret-middleware", 5, 1)
	access, err := jwt.GenerateAccessToken("U2")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	newAuthEngine(JWTAuthWS()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+access, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "U2", w.Body.String())

	// 普通接口不接受 query token
	w = httptest.NewRecorder()
	newAuthEngine(JWTAuth()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+access, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestKeyedRateLimiter(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, 2, time.Minute).(*keyedRateLimiter)
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	// 不同 key 互不影响
	assert.True(t, limiter.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("a"))
}

func TestKeyedRateLimiterEvictsIdleKeys(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, 1, time.Minute).(*keyedRateLimiter)
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	now = now.Add(2 * time.Minute)
	limiter.Allow("b")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.visitors, "a")
	assert.Contains(t, limiter.visitors, "b")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/send", RateLimit(NewKeyedRateLimiter(0.001, 1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/send", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/send", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, errorx.CodeTooManyRequests, decodeCode(t, w))
}
