package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/web/cache"
	"github.com/nbazone/nbazone/web/service"
	"github.com/nbazone/nbazone/web/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	engine.ServeHTTP(w, req)
	return w
}

func withPrincipal(p *service.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			session.SetPrincipal(c, p)
		}
		c.Next()
	}
}

func TestRoleRequired(t *testing.T) {
	tests := []struct {
		name      string
		principal *service.Principal
		status    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user", &service.Principal{Username: "u", Roles: []model.AppRole{model.RoleUser}}, http.StatusForbidden},
		{"admin", &service.Principal{Username: "a", Roles: []model.AppRole{model.RoleAdmin}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/guarded", withPrincipal(tt.principal), RoleRequired(model.RoleAdmin), ok)

			w := serve(engine, http.MethodGet, "/guarded")
			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"path":"/guarded"`)
			}
		})
	}
}

func TestSignInRateLimit(t *testing.T) {
	require.NoError(t, cache.InitRedis(config.CacheConfig{}))
	t.Cleanup(func() { _ = cache.Close() })

	engine := gin.New()
	engine.POST("/signin", SignInRateLimit(2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/signin").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/signin").Code)

	w := serve(engine, http.MethodPost, "/signin")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestSignInRateLimitIgnoresSuccess(t *testing.T) {
	require.NoError(t, cache.InitRedis(config.CacheConfig{}))
	t.Cleanup(func() { _ = cache.Close() })

	engine := gin.New()
	engine.POST("/signin", SignInRateLimit(1, time.Minute), ok)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/signin").Code)
	}
}

func TestSignInRateLimitResetOnSuccess(t *testing.T) {
	require.NoError(t, cache.InitRedis(config.CacheConfig{}))
	t.Cleanup(func() { _ = cache.Close() })

	status := http.StatusUnauthorized
	engine := gin.New()
	engine.POST("/signin", SignInRateLimit(2, time.Minute), func(c *gin.Context) {
		c.Status(status)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/signin").Code)

	status = http.StatusOK
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/signin").Code)

	status = http.StatusUnauthorized
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/signin").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/signin").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/signin").Code)
}

func TestDomainValidator(t *testing.T) {
	engine := gin.New()
	engine.Use(DomainValidator("nba.example.com"))
	engine.GET("/", ok)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "nba.example.com:8080"
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "evil.example.com"
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAccessLogSetsRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(AccessLog())
	engine.GET("/", ok)

	w := serve(engine, http.MethodGet, "/")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
