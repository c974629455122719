package telemetry

import (
	"context"
	"errors"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var _ appintegration.SyncMetrics = (*SyncMetrics)(nil)

// Metric names
const (
	MetricEntityTotal     = "sync_entity_total"
	MetricRunDuration     = "sync_run_duration_seconds"
	MetricRunTotal        = "sync_run_total"
	MetricWebhookTotal    = "sync_webhook_total"
	meterNameSyncPipeline = "commerce-sync/sync"
)

// Attribute keys
const (
	AttrTenantID = "tenant_id"
	AttrModule   = "module"
	AttrAction   = "action"
	AttrOutcome  = "outcome"
	AttrStatus   = "status"
	AttrEvent    = "event"
	AttrResult   = "result"
)

// ErrNilMeter is returned when SyncMetrics is built without a meter
var ErrNilMeter = errors.New("telemetry: meter cannot be nil")

// SyncMetrics records synchronization outcomes as OpenTelemetry instruments.
type SyncMetrics struct {
	entityTotal  metric.Int64Counter
	runTotal     metric.Int64Counter
	runDuration  metric.Float64Histogram
	webhookTotal metric.Int64Counter
	logger       *zap.Logger
}

// NewSyncMetrics creates the sync instruments on the given meter
func NewSyncMetrics(meter metric.Meter, logger *zap.Logger) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &SyncMetrics{logger: logger}
	var err error

	m.entityTotal, err = meter.Int64Counter(MetricEntityTotal,
		metric.WithDescription("Entities written to the target store, by action and outcome"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		return nil, err
	}

	m.runTotal, err = meter.Int64Counter(MetricRunTotal,
		metric.WithDescription("Module sync runs, by status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	m.runDuration, err = meter.Float64Histogram(MetricRunDuration,
		metric.WithDescription("Duration of one module sync run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600),
	)
	if err != nil {
		return nil, err
	}

	m.webhookTotal, err = meter.Int64Counter(MetricWebhookTotal,
		metric.WithDescription("Webhook deliveries, by event and result"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordEntity counts one create/update/delete attempt
func (m *SyncMetrics) RecordEntity(ctx context.Context, tenantID string, module integration.SyncModule, action integration.SyncAction, outcome integration.SyncOutcome) {
	m.entityTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrTenantID, tenantID),
		attribute.String(AttrModule, string(module)),
		attribute.String(AttrAction, string(action)),
		attribute.String(AttrOutcome, string(outcome)),
	))
}

// RecordRun records the status and duration of one module run
func (m *SyncMetrics) RecordRun(ctx context.Context, tenantID string, module integration.SyncModule, status integration.SyncStatus, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrTenantID, tenantID),
		attribute.String(AttrModule, string(module)),
		attribute.String(AttrStatus, string(status)),
	)
	m.runTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordWebhook counts one webhook delivery
func (m *SyncMetrics) RecordWebhook(ctx context.Context, event string, result string) {
	m.webhookTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrEvent, event),
		attribute.String(AttrResult, result),
	))
}
