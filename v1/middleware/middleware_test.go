package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/config"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/auth"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/services"
	"github.com/treehousetherapy/curelia-health/v1/utils"
	"golang.org/x/crypto/bcrypt"
)

func TestRequestContextGeneratesRequestID(t *testing.T) {
	var meta utils.RequestMeta
	handler := RequestContextMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta = utils.GetRequestMeta(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "curelia-test/1.0")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, meta.RequestID)
	assert.Equal(t, meta.RequestID, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "203.0.113.7", meta.IPAddress)
	assert.Equal(t, "curelia-test/1.0", meta.UserAgent)
}

func TestRequestContextHonorsInboundRequestID(t *testing.T) {
	var meta utils.RequestMeta
	handler := RequestContextMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta = utils.GetRequestMeta(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("X-Request-ID", "upstream-trace-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-trace-42", meta.RequestID)
	assert.Equal(t, "upstream-trace-42", rec.Header().Get("X-Request-ID"))
}

func TestRequestContextPrefersForwardedFor(t *testing.T) {
	var meta utils.RequestMeta
	handler := RequestContextMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta = utils.GetRequestMeta(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.4", meta.IPAddress)
}

func newMiddlewareGuard(t *testing.T) (*auth.Guard, *models.User, string) {
	t.Helper()
	db := services.SetupSQLiteTestDB(t)
	cfg := config.SecurityConfig{
		JWTSecret:          "middleware-test-secret",
		AccessTokenTTL:     time.Hour,
		LockoutThreshold:   5,
		SessionIdleTimeout: 30 * time.Minute,
		BcryptCost:         bcrypt.MinCost,
	}
	ledger := audit.NewLedger(db)
	guard := auth.NewGuard(db, ledger,
		auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL),
		auth.NewMemorySessionStore(cfg.SessionIdleTimeout), cfg)

	user := services.CreateTestUser(t, db, "mw@curelia.test", models.RoleStaff)
	result, err := guard.Login(context.Background(), user.Email, "password123")
	require.NoError(t, err)
	return guard, user, result.Token
}

func TestAuthMiddlewarePlacesActorOnContext(t *testing.T) {
	guard, user, token := newMiddlewareGuard(t)

	var actor *models.User
	handler := AuthMiddleware(&AuthConfig{Guard: guard})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ = utils.GetActor(r.Context())
		sessionID, ok := utils.GetSessionID(r.Context())
		assert.True(t, ok)
		assert.NotEmpty(t, sessionID)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, actor)
	assert.Equal(t, user.ID, actor.ID)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	guard, _, _ := newMiddlewareGuard(t)

	handler := AuthMiddleware(&AuthConfig{Guard: guard})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication required")
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	guard, _, _ := newMiddlewareGuard(t)

	handler := AuthMiddleware(&AuthConfig{Guard: guard})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired credentials")
}

func TestAuthMiddlewareSkipsPublicPaths(t *testing.T) {
	guard, _, _ := newMiddlewareGuard(t)

	reached := false
	handler := AuthMiddleware(&AuthConfig{
		Guard:       guard,
		PublicPaths: []string{"/api/v1/auth/login"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, err := ExtractBearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = ExtractBearerToken(req)
	assert.Error(t, err)

	req.Header.Del("Authorization")
	_, err = ExtractBearerToken(req)
	assert.Error(t, err)
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
}
