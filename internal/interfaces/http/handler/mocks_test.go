package handler

import (
	"context"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockWebhookDispatcher is a mock WebhookDispatcher
type MockWebhookDispatcher struct {
	mock.Mock
}

func (m *MockWebhookDispatcher) Dispatch(ctx context.Context, ev integration.WebhookEvent, raw []byte) (*appintegration.DispatchResult, error) {
	args := m.Called(ctx, ev, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appintegration.DispatchResult), args.Error(1)
}

// MockTenantSyncer is a mock TenantSyncer
type MockTenantSyncer struct {
	mock.Mock
}

func (m *MockTenantSyncer) SyncTenant(ctx context.Context, tenantID string, modules ...integration.SyncModule) (*appintegration.TenantSyncReport, error) {
	args := m.Called(ctx, tenantID, modules)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appintegration.TenantSyncReport), args.Error(1)
}

// MockSyncLogReader is a mock SyncLogReader
type MockSyncLogReader struct {
	mock.Mock
}

func (m *MockSyncLogReader) ListForTenant(ctx context.Context, tenantID string, filter integration.SyncLogFilter) ([]integration.SyncLogEntry, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]integration.SyncLogEntry), args.Get(1).(int64), args.Error(2)
}

// MockTenantManager is a mock TenantManager
type MockTenantManager struct {
	mock.Mock
}

func (m *MockTenantManager) GetTenant(ctx context.Context, tenantID string) (*integration.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Tenant), args.Error(1)
}

func (m *MockTenantManager) ConfigureTarget(ctx context.Context, tenantID string, in appintegration.ConfigureTargetInput) (*integration.Tenant, error) {
	args := m.Called(ctx, tenantID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Tenant), args.Error(1)
}

// MockCallbackProcessor is a mock CallbackProcessor
type MockCallbackProcessor struct {
	mock.Mock
}

func (m *MockCallbackProcessor) HandleCallback(ctx context.Context, in appintegration.CallbackInput) (*appintegration.CallbackResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appintegration.CallbackResult), args.Error(1)
}

// MockTenantRevoker is a mock TenantRevoker
type MockTenantRevoker struct {
	mock.Mock
}

func (m *MockTenantRevoker) RevokeTenant(ctx context.Context, tenantID string, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, ttl)
	return args.Error(0)
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func configuredTenant(id string) *integration.Tenant {
	return &integration.Tenant{
		ID:          id,
		Handle:      "acme",
		Name:        "Acme",
		AccessToken: "source-token",
		Target: &integration.TargetCredentials{
			BaseURL:        "https://shop.example.com",
			ConsumerKey:    "ck_0123456789abcdef",
			ConsumerSecret: "cs_secret_value",
			APIVersion:     "wc/v3",
		},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}
