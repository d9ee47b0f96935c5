package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/acquisitions/api/database/model"
	"github.com/acquisitions/api/security"
	"github.com/acquisitions/api/web/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSecuredEngine(t *testing.T, cfg SecurityConfig, protector *security.Protector, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	for _, h := range pre {
		engine.Use(h)
	}
	engine.Use(Security(cfg, protector))
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return engine
}

func newProtector(t *testing.T) *security.Protector {
	p, err := security.New(security.Config{Key: "test"})
	require.NoError(t, err)
	return p
}

func hit(engine *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("User-Agent", "acceptance-suite/1.0")
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) entity.ErrorResponse {
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSecurityGuestQuota(t *testing.T) {
	cfg := DefaultSecurityConfig()
	engine := newSecuredEngine(t, cfg, newProtector(t))

	for i := 0; i < cfg.GuestQuota; i++ {
		w := hit(engine, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := hit(engine, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := errorBody(t, w)
	assert.Equal(t, "Forbidden", resp.Error)
	assert.Equal(t, "Too many requests", resp.Message)

	// A different caller is unaffected.
	w = hit(engine, "10.0.0.2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityRoleQuota(t *testing.T) {
	cfg := DefaultSecurityConfig()
	principal := model.Principal{Id: 1, Email: "admin@localhost", Role: model.RoleAdmin}
	engine := newSecuredEngine(t, cfg, newProtector(t), func(c *gin.Context) {
		c.Set(principalKey, principal)
	})

	adminQuota := cfg.Quotas[model.RoleAdmin]
	for i := 0; i < adminQuota; i++ {
		w := hit(engine, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := hit(engine, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSecurityBypass(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.Bypass = true
	engine := newSecuredEngine(t, cfg, newProtector(t))

	for i := 0; i < cfg.GuestQuota*3; i++ {
		w := hit(engine, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestSecurityShieldDenial(t *testing.T) {
	rules := `{"shield":{"mode":"LIVE"}}`
	protector, err := security.New(security.Config{Key: "test", RulesJSON: []byte(rules)})
	require.NoError(t, err)
	engine := newSecuredEngine(t, DefaultSecurityConfig(), protector)

	req := httptest.NewRequest("GET", "/ping?q=%27%20union%20select%201--", nil)
	req.Header.Set("User-Agent", "acceptance-suite/1.0")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Request blocked by policy", errorBody(t, w).Message)
}

func TestSecurityBotDenial(t *testing.T) {
	rules := `{"shield":{"mode":"DRY_RUN"},"bot":{"mode":"LIVE","allow":["CATEGORY:SEARCH_ENGINE"]}}`
	protector, err := security.New(security.Config{Key: "test", RulesJSON: []byte(rules)})
	require.NoError(t, err)
	engine := newSecuredEngine(t, DefaultSecurityConfig(), protector)

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Automated requests not allowed", errorBody(t, w).Message)
}

func TestSecurityEngineFailureFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	protector, err := security.New(security.Config{
		Key:   "test",
		Store: security.NewRedisWindowStore(client),
	})
	require.NoError(t, err)
	engine := newSecuredEngine(t, DefaultSecurityConfig(), protector)

	mr.Close()

	w := hit(engine, "10.0.0.1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := errorBody(t, w)
	assert.Equal(t, "Internal server error", resp.Error)
	assert.Equal(t, "Security check failed", resp.Message)
}
