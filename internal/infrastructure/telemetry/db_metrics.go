package telemetry

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/metric"
)

// Pool metric names
const (
	MetricDBConnectionsOpen  = "db_pool_connections_open"
	MetricDBConnectionsInUse = "db_pool_connections_in_use"
	MetricDBConnectionsIdle  = "db_pool_connections_idle"
	MetricDBWaitCount        = "db_pool_wait_total"
)

// RegisterDBPoolMetrics exposes database/sql pool statistics as observable
// instruments. The returned registration must be unregistered on shutdown.
func RegisterDBPoolMetrics(meter metric.Meter, sqlDB *sql.DB) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge(MetricDBConnectionsOpen,
		metric.WithDescription("Established connections, in use and idle"))
	if err != nil {
		return nil, err
	}
	inUse, err := meter.Int64ObservableGauge(MetricDBConnectionsInUse,
		metric.WithDescription("Connections currently in use"))
	if err != nil {
		return nil, err
	}
	idle, err := meter.Int64ObservableGauge(MetricDBConnectionsIdle,
		metric.WithDescription("Idle connections"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter(MetricDBWaitCount,
		metric.WithDescription("Connections waited for"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(idle, int64(stats.Idle))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, idle, waits)
}
