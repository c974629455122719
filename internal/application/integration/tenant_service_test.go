package integration

import (
	"context"
	"encoding/hex"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSourceAuthorizer is a mock implementation of integration.SourceAuthorizer
type MockSourceAuthorizer struct {
	mock.Mock
}

func (m *MockSourceAuthorizer) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockSourceAuthorizer) FetchCompany(ctx context.Context, companyID, accessToken string) (*integration.CompanyProfile, error) {
	args := m.Called(ctx, companyID, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.CompanyProfile), args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueTenantToken(tenantID string) (string, time.Time, error) {
	args := m.Called(tenantID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

const testCallbackSecret = "callback-secret"

func signedCallback(companyID, code string) CallbackInput {
	in := CallbackInput{CompanyID: companyID, Code: code, Timestamp: "1740830400"}
	in.HMAC = hex.EncodeToString(CallbackSignature(testCallbackSecret, in))
	return in
}

func newTestTenantService(repo *fakeTenantRepo, auth integration.SourceAuthorizer, tokens TokenIssuer) *TenantService {
	return NewTenantService(TenantServiceConfig{
		Tenants:        repo,
		Authorizer:     auth,
		Tokens:         tokens,
		CallbackSecret: testCallbackSecret,
		Logger:         newTestLogger(),
		Now:            fixedClock,
	})
}

// ---------------------------------------------------------------------------
// ConfigureTarget
// ---------------------------------------------------------------------------

func TestTenantService_ConfigureTarget(t *testing.T) {
	repo := newFakeTenantRepo(&integration.Tenant{ID: testTenantID, AccessToken: "tok"})
	svc := newTestTenantService(repo, nil, nil)

	tenant, err := svc.ConfigureTarget(context.Background(), testTenantID, ConfigureTargetInput{
		BaseURL:        " https://shop.test/ ",
		ConsumerKey:    "ck_1",
		ConsumerSecret: "cs_1",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://shop.test", tenant.Target.BaseURL)
	assert.Equal(t, integration.DefaultTargetAPIVersion, tenant.Target.APIVersion)
	assert.Equal(t, fixedNow, tenant.UpdatedAt)

	stored, err := repo.Get(context.Background(), testTenantID)
	require.NoError(t, err)
	assert.True(t, stored.IsConfigured())
}

func TestTenantService_ConfigureTargetReplacesWholeConfig(t *testing.T) {
	repo := newFakeTenantRepo(configuredTenant(testTenantID))
	svc := newTestTenantService(repo, nil, nil)

	tenant, err := svc.ConfigureTarget(context.Background(), testTenantID, ConfigureTargetInput{
		BaseURL:        "http://other.test",
		ConsumerKey:    "ck_2",
		ConsumerSecret: "cs_2",
		APIVersion:     "wc/v2",
	})

	require.NoError(t, err)
	assert.Equal(t, integration.TargetCredentials{
		BaseURL:        "http://other.test",
		ConsumerKey:    "ck_2",
		ConsumerSecret: "cs_2",
		APIVersion:     "wc/v2",
	}, *tenant.Target)
}

func TestTenantService_ConfigureTargetValidation(t *testing.T) {
	tests := []struct {
		name  string
		input ConfigureTargetInput
	}{
		{"missing url", ConfigureTargetInput{ConsumerKey: "ck", ConsumerSecret: "cs"}},
		{"url without scheme", ConfigureTargetInput{BaseURL: "shop.test", ConsumerKey: "ck", ConsumerSecret: "cs"}},
		{"missing key", ConfigureTargetInput{BaseURL: "https://shop.test", ConsumerSecret: "cs"}},
		{"missing secret", ConfigureTargetInput{BaseURL: "https://shop.test", ConsumerKey: "ck"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestTenantService(newFakeTenantRepo(configuredTenant(testTenantID)), nil, nil)
			_, err := svc.ConfigureTarget(context.Background(), testTenantID, tt.input)
			assert.ErrorIs(t, err, integration.ErrTenantInvalidConfig)
		})
	}
}

func TestTenantService_ConfigureUnknownTenant(t *testing.T) {
	svc := newTestTenantService(newFakeTenantRepo(), nil, nil)

	_, err := svc.ConfigureTarget(context.Background(), "missing", ConfigureTargetInput{
		BaseURL: "https://shop.test", ConsumerKey: "ck", ConsumerSecret: "cs",
	})

	assert.ErrorIs(t, err, integration.ErrTenantNotFound)
}

func TestTenantService_GetTenantRejectsBlankID(t *testing.T) {
	svc := newTestTenantService(newFakeTenantRepo(), nil, nil)
	_, err := svc.GetTenant(context.Background(), "  ")
	assert.ErrorIs(t, err, integration.ErrTenantInvalidID)
}

// ---------------------------------------------------------------------------
// HandleCallback
// ---------------------------------------------------------------------------

func TestTenantService_HandleCallbackCreatesTenant(t *testing.T) {
	repo := newFakeTenantRepo()
	auth := new(MockSourceAuthorizer)
	auth.On("ExchangeCode", mock.Anything, "code-1").Return("access-1", nil)
	auth.On("FetchCompany", mock.Anything, "company-9", "access-1").Return(&integration.CompanyProfile{
		ID: "company-9", Handle: "shop", Name: "Shop", LogoURL: "https://cdn.test/logo.png",
	}, nil)
	tokens := new(MockTokenIssuer)
	tokens.On("IssueTenantToken", "company-9").Return("jwt-token", fixedNow.Add(time.Hour), nil)
	svc := newTestTenantService(repo, auth, tokens)

	in := signedCallback("company-9", "code-1")
	in.RedirectTo = "https://app.test/dashboard"
	res, err := svc.HandleCallback(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "Shop", res.Tenant.Name)
	assert.Equal(t, "access-1", res.Tenant.AccessToken)
	assert.Equal(t, "code-1", res.Tenant.AuthorizationCode)
	assert.Equal(t, fixedNow, res.Tenant.CreatedAt)
	assert.Equal(t, "jwt-token", res.Token)

	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "app.test", u.Host)
	assert.Equal(t, "/dashboard", u.Path)
	assert.Equal(t, "company-9", u.Query().Get("company_id"))
	assert.Equal(t, "jwt-token", u.Query().Get("token"))

	stored, err := repo.Get(context.Background(), "company-9")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/logo.png", stored.LogoURL)
	assert.False(t, stored.IsConfigured())
	auth.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestTenantService_HandleCallbackKeepsTargetConfig(t *testing.T) {
	existing := configuredTenant(testTenantID)
	existing.CreatedAt = fixedNow.Add(-24 * time.Hour)
	repo := newFakeTenantRepo(existing)
	auth := new(MockSourceAuthorizer)
	auth.On("ExchangeCode", mock.Anything, "code-2").Return("access-2", nil)
	auth.On("FetchCompany", mock.Anything, testTenantID, "access-2").Return(&integration.CompanyProfile{ID: testTenantID, Name: "Renamed"}, nil)
	svc := newTestTenantService(repo, auth, nil)

	res, err := svc.HandleCallback(context.Background(), signedCallback(testTenantID, "code-2"))

	require.NoError(t, err)
	assert.Equal(t, "/?company_id="+testTenantID, res.RedirectURL)
	assert.Empty(t, res.Token)

	stored, err := repo.Get(context.Background(), testTenantID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, "access-2", stored.AccessToken)
	assert.Equal(t, existing.CreatedAt, stored.CreatedAt)
	assert.True(t, stored.IsConfigured())
}

func TestTenantService_HandleCallbackRejectsBadHMAC(t *testing.T) {
	auth := new(MockSourceAuthorizer)
	svc := newTestTenantService(newFakeTenantRepo(), auth, nil)

	in := signedCallback("company-9", "code-1")
	in.Code = "tampered"
	_, err := svc.HandleCallback(context.Background(), in)

	assert.ErrorIs(t, err, integration.ErrCallbackInvalidHMAC)
	auth.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
}

func TestTenantService_HandleCallbackMissingParams(t *testing.T) {
	svc := newTestTenantService(newFakeTenantRepo(), new(MockSourceAuthorizer), nil)
	_, err := svc.HandleCallback(context.Background(), CallbackInput{CompanyID: "company-9"})
	assert.ErrorIs(t, err, integration.ErrCallbackInvalidParams)
}

func TestTenantService_HandleCallbackExchangeFailure(t *testing.T) {
	repo := newFakeTenantRepo()
	auth := new(MockSourceAuthorizer)
	auth.On("ExchangeCode", mock.Anything, "code-1").Return("", errors.New("invalid_grant"))
	svc := newTestTenantService(repo, auth, nil)

	_, err := svc.HandleCallback(context.Background(), signedCallback("company-9", "code-1"))

	assert.ErrorContains(t, err, "invalid_grant")
	_, getErr := repo.Get(context.Background(), "company-9")
	assert.ErrorIs(t, getErr, integration.ErrTenantNotFound)
}

func TestVerifyCallbackHMAC(t *testing.T) {
	in := signedCallback("company-9", "code-1")
	assert.True(t, VerifyCallbackHMAC(testCallbackSecret, in))
	assert.False(t, VerifyCallbackHMAC("other-secret", in))

	in.HMAC = "not-hex"
	assert.False(t, VerifyCallbackHMAC(testCallbackSecret, in))
}
