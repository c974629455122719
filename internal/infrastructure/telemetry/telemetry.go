package telemetry

import (
	"context"
	"errors"

	"github.com/commercesync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Telemetry bundles the providers started for one process.
type Telemetry struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	logger   *zap.Logger
}

// Setup starts every signal pipeline enabled in cfg. Disabled pipelines
// are replaced by no-op providers, so the result is always usable.
func Setup(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}
	var err error

	if t.Tracer, err = NewTracerProvider(ctx, cfg.Telemetry, logger); err != nil {
		return nil, err
	}
	if t.Meter, err = NewMeterProvider(ctx, cfg.Telemetry, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Logs, err = NewLoggerProvider(ctx, cfg.Telemetry, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Profiler, err = NewProfiler(cfg.Profiling, cfg.Telemetry.ServiceName, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if cfg.Profiling.TracingEnabled && t.Profiler.IsEnabled() {
		if err := t.Tracer.EnableSpanProfiles(); err != nil {
			logger.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}
	return t, nil
}

// Shutdown stops every provider, flushing pending data.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
