// Package testutil provides common test utilities for the commerce sync
// backend: gin test contexts, dashboard tokens, HTTP envelopes, polling
// assertions and fake SOURCE documents.
package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/commercesync/backend/internal/infrastructure/auth"
	"github.com/commercesync/backend/internal/infrastructure/config"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestJWTSecret signs tokens issued by NewTokenIssuer.
const TestJWTSecret = "test-secret-key-at-least-32-chars"

func init() {
	gin.SetMode(gin.TestMode)
}

// TestContext wraps a gin test context and its recorder, for driving a
// single handler or middleware without a router.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
}

// NewTestContext creates a gin test context for method and target.
func NewTestContext(t *testing.T, method, target string) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return &TestContext{Context: c, Recorder: w}
}

// ForTenant routes the context to tenantID and marks it authenticated,
// as TenantAuth does for dashboard requests.
func (tc *TestContext) ForTenant(tenantID string) *TestContext {
	tc.Context.Params = append(tc.Context.Params, gin.Param{Key: middleware.TenantIDParam, Value: tenantID})
	tc.Context.Set(middleware.JWTTenantIDKey, tenantID)
	return tc
}

// SetRequestID sets a request ID in the context.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set(middleware.RequestIDKey, id)
}

// TenantID returns a deterministic SOURCE company id derived from seed.
func TenantID(seed string) string {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed)).String()
}

// NewTokenIssuer returns a JWT service signing with TestJWTSecret.
func NewTokenIssuer(t *testing.T) *auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:       TestJWTSecret,
		TokenExpiration: time.Hour,
		Issuer:          "commerce-sync-test",
	})
	require.NoError(t, err)
	return svc
}

// TenantToken issues a dashboard bearer token scoped to tenantID.
func TenantToken(t *testing.T, issuer *auth.JWTService, tenantID string) string {
	t.Helper()

	token, _, err := issuer.IssueTenantToken(tenantID)
	require.NoError(t, err)
	return token
}

// RequireEventually polls condition until it holds or timeout elapses.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}

// AssertNever fails if condition becomes true within duration.
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if condition() {
			require.Fail(t, "Condition unexpectedly became true", msgAndArgs...)
		}
		time.Sleep(interval)
	}
}
