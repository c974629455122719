package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewSyncMetrics_NilMeter(t *testing.T) {
	m, err := NewSyncMetrics(nil, nil)
	assert.ErrorIs(t, err, ErrNilMeter)
	assert.Nil(t, m)
}

func TestSyncMetrics_RecordEntity(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSyncMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordEntity(ctx, "company-1", integration.SyncModuleProducts, integration.SyncActionCreate, integration.SyncOutcomeSuccess)
	m.RecordEntity(ctx, "company-1", integration.SyncModuleProducts, integration.SyncActionCreate, integration.SyncOutcomeSuccess)
	m.RecordEntity(ctx, "company-1", integration.SyncModuleOrders, integration.SyncActionUpdate, integration.SyncOutcomeFailed)

	metric, ok := collectMetric(t, reader, MetricEntityTotal)
	require.True(t, ok)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		module, _ := dp.Attributes.Value(attribute.Key(AttrModule))
		counts[module.AsString()] = dp.Value
	}
	assert.Equal(t, int64(2), counts["products"])
	assert.Equal(t, int64(1), counts["orders"])
}

func TestSyncMetrics_RecordRun(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSyncMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	m.RecordRun(context.Background(), "company-1", integration.SyncModuleCustomers, integration.SyncStatusPartial, 3*time.Second)

	metric, ok := collectMetric(t, reader, MetricRunDuration)
	require.True(t, ok)
	hist, ok := metric.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 3.0, hist.DataPoints[0].Sum, 0.001)

	status, ok := hist.DataPoints[0].Attributes.Value(attribute.Key(AttrStatus))
	require.True(t, ok)
	assert.Equal(t, string(integration.SyncStatusPartial), status.AsString())

	_, ok = collectMetric(t, reader, MetricRunTotal)
	assert.True(t, ok)
}

func TestSyncMetrics_RecordWebhook(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSyncMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	m.RecordWebhook(context.Background(), "product.updated", "processed")

	metric, ok := collectMetric(t, reader, MetricWebhookTotal)
	require.True(t, ok)
	sum := metric.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	event, _ := sum.DataPoints[0].Attributes.Value(attribute.Key(AttrEvent))
	assert.Equal(t, "product.updated", event.AsString())
}
