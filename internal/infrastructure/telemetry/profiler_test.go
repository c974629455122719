package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/commercesync/backend/internal/infrastructure/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseProfileTypes(t *testing.T) {
	types, unknown := ParseProfileTypes([]string{"cpu", " Inuse_Space ", "heap", "mutex_count"})
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileMutexCount,
	}, types)
	assert.Equal(t, []string{"heap"}, unknown)
}

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.ProfilingConfig{}, "commerce-sync", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, "commerce-sync", zap.NewNop())
	assert.ErrorContains(t, err, "server address")

	_, err = NewProfiler(config.ProfilingConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, "", zap.NewNop())
	assert.ErrorContains(t, err, "application name")
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Tenant-ID":  "company-1",
		"request_id": "abc",
		"module":     "products",
		"empty":      "",
		"route":      strings.Repeat("x", 200),
		"!!!":        "dropped",
	})
	assert.Equal(t, []string{
		"module", "products",
		"route", strings.Repeat("x", MaxLabelValueLength),
		"tenant_id", "company-1",
	}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestWithProfilingLabels_RunsFunction(t *testing.T) {
	called := 0
	WithProfilingLabels(context.Background(), OperationLabels("sync_sweep"), func(context.Context) { called++ })
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called++ })
	assert.Equal(t, 2, called)

	labels := HTTPRequestLabels("/api/v1/tenants/:tenant_id/sync", "POST", "")
	assert.Equal(t, map[string]string{
		ProfilingLabelRoute:  "/api/v1/tenants/:tenant_id/sync",
		ProfilingLabelMethod: "POST",
	}, labels)
}
