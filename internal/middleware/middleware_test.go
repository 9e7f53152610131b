package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func signToken(t *testing.T, secret, userID string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "email": "ada@example.com",
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(testSecret))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetClaims(c).UserID})
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protectedRouter()

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"message":"Not authorized, no token"}`},
		{"not bearer", "Basic abc", http.StatusUnauthorized, `{"message":"Not authorized, no token"}`},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, `{"message":"Not authorized"}`},
		{"wrong secret", "Bearer " + signToken(t, "other", "u1", time.Hour), http.StatusUnauthorized, `{"message":"Not authorized"}`},
		{"expired", "Bearer " + signToken(t, testSecret, "u1", -time.Hour), http.StatusUnauthorized, `{"message":"Not authorized"}`},
		{"no user id", "Bearer " + signToken(t, testSecret, "", time.Hour), http.StatusUnauthorized, `{"message":"Not authorized"}`},
		{"valid", "Bearer " + signToken(t, testSecret, "u1", time.Hour), http.StatusOK, `{"user_id":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/protected", map[string]string{"Authorization": tt.header})
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestWindowLimiter(t *testing.T) {
	l := &windowLimiter{name: "test", limit: 2, window: time.Minute, entries: map[string]*windowEntry{}}
	now := time.Now()

	ok, _ := l.allow("1.1.1.1", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1", now)
	assert.True(t, ok)
	ok, end := l.allow("1.1.1.1", now)
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), end)

	ok, _ = l.allow("2.2.2.2", now)
	assert.True(t, ok, "limits are per ip")

	ok, _ = l.allow("1.1.1.1", now.Add(2*time.Minute))
	assert.True(t, ok, "a new window resets the count")

	purged, remaining := l.purge(now.Add(90 * time.Second))
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, remaining)
}

func TestLoginRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/login", LoginRateLimiter(1), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/login", nil).Code)
	w := get(r, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiters_RebuildReplacesRegistryEntry(t *testing.T) {
	for i := 0; i < 5; i++ {
		RateLimiter(10, time.Minute)
		LoginRateLimiter(5)
	}
	latest := RateLimiter(10, time.Minute)

	registryMu.Lock()
	defer registryMu.Unlock()
	assert.Len(t, registry, 2)
	require.Contains(t, registry, "api")
	assert.Equal(t, 10, registry["api"].limit)
	assert.NotNil(t, latest)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = get(r, "/", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
}

func TestRecoveryAndErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.String(http.StatusTeapot, "already written")
	})

	w := get(r, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())

	w = get(r, "/written", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
