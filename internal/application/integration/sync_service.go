package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/commercesync/backend/internal/application/integration"

// SyncMetrics receives sync telemetry.
type SyncMetrics interface {
	RecordEntity(ctx context.Context, tenantID string, module integration.SyncModule, action integration.SyncAction, outcome integration.SyncOutcome)
	RecordRun(ctx context.Context, tenantID string, module integration.SyncModule, status integration.SyncStatus, elapsed time.Duration)
	RecordWebhook(ctx context.Context, event string, result string)
}

type noopMetrics struct{}

func (noopMetrics) RecordEntity(context.Context, string, integration.SyncModule, integration.SyncAction, integration.SyncOutcome) {
}
func (noopMetrics) RecordRun(context.Context, string, integration.SyncModule, integration.SyncStatus, time.Duration) {
}
func (noopMetrics) RecordWebhook(context.Context, string, string) {}

// TenantSyncReport summarizes one tenant run.
type TenantSyncReport struct {
	TenantID   string
	Results    []*integration.SyncResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// SweepReport summarizes a run over every tenant.
type SweepReport struct {
	Tenants   int
	Succeeded int
	Failed    int
	Skipped   int
	Reports   []*TenantSyncReport
}

// SyncServiceConfig holds the SyncService collaborators.
type SyncServiceConfig struct {
	Tenants         integration.TenantRepository
	Logs            integration.SyncLogRepository
	SourceConnector integration.SourceConnector
	TargetConnector integration.TargetConnector
	Metrics         SyncMetrics
	Logger          *zap.Logger
	// MaxPages bounds each collection fetch (default DefaultMaxPages).
	MaxPages int
	Now      func() time.Time
}

// SyncService runs batch synchronizations. Runs are sequential: one
// module after another, one entity at a time, one tenant at a time.
type SyncService struct {
	tenants  integration.TenantRepository
	logs     integration.SyncLogRepository
	sources  integration.SourceConnector
	targets  integration.TargetConnector
	metrics  SyncMetrics
	logger   *zap.Logger
	tracer   trace.Tracer
	maxPages int
	now      func() time.Time

	mu      sync.Mutex
	running map[string]struct{}
}

// NewSyncService creates a SyncService.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	s := &SyncService{
		tenants:  cfg.Tenants,
		logs:     cfg.Logs,
		sources:  cfg.SourceConnector,
		targets:  cfg.TargetConnector,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		tracer:   otel.Tracer(tracerName),
		maxPages: cfg.MaxPages,
		now:      cfg.Now,
		running:  make(map[string]struct{}),
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ---------------------------------------------------------------------------
// Tenant runs
// ---------------------------------------------------------------------------

// SyncTenant synchronizes modules (all of them when empty) for one tenant,
// flushing the sync log after each module. A fetch failure aborts the run
// and is returned together with the partial report.
func (s *SyncService) SyncTenant(ctx context.Context, tenantID string, modules ...integration.SyncModule) (*TenantSyncReport, error) {
	if err := s.acquire(tenantID); err != nil {
		return nil, err
	}
	defer s.release(tenantID)

	ctx, span := s.tracer.Start(ctx, "sync.tenant", trace.WithAttributes(attribute.String("tenant.id", tenantID)))
	defer span.End()

	if len(modules) == 0 {
		modules = integration.AllSyncModules
	}
	for _, m := range modules {
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: %q", integration.ErrUnknownModule, m)
		}
	}

	engine, catalog, err := s.openEngine(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log := s.logger.With(zap.String("tenant_id", tenantID))
	report := &TenantSyncReport{TenantID: tenantID, StartedAt: s.now()}
	log.Info("tenant sync started", zap.Int("modules", len(modules)))

	for _, module := range modules {
		result, runErr := s.runModule(ctx, engine, catalog, module)
		report.Results = append(report.Results, result)
		if runErr != nil {
			report.FinishedAt = s.now()
			span.RecordError(runErr)
			span.SetStatus(codes.Error, runErr.Error())
			log.Error("tenant sync aborted", zap.String("module", module.String()), zap.Error(runErr))
			return report, runErr
		}
	}

	report.FinishedAt = s.now()
	log.Info("tenant sync finished", zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

// openEngine loads the tenant configuration and binds both platforms.
func (s *SyncService) openEngine(ctx context.Context, tenantID string) (*Engine, integration.SourceCatalog, error) {
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := tenant.Configuration()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := s.sources.Source(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open source client: %w", err)
	}
	store, err := s.targets.Target(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open target client: %w", err)
	}
	logs := NewLogCollector(tenantID, s.now)
	return NewEngine(catalog, store, logs, s.logger, s.now), catalog, nil
}

// runModule fetches and reconciles one module, then flushes its entries.
func (s *SyncService) runModule(ctx context.Context, engine *Engine, pager Pager, module integration.SyncModule) (*integration.SyncResult, error) {
	ctx, span := s.tracer.Start(ctx, "sync.module", trace.WithAttributes(attribute.String("sync.module", module.String())))
	defer span.End()

	tenantID := engine.Logs().TenantID()
	started := s.now()

	total, err := s.reconcileModule(ctx, engine, pager, module)
	entries := engine.Logs().Drain()
	s.flush(ctx, tenantID, entries)

	var result *integration.SyncResult
	if err != nil {
		result = integration.NewFailedSyncResult(module, err, s.now())
	} else {
		result = integration.NewSyncResult(module, total, entries, s.now())
	}
	span.SetAttributes(
		attribute.Int("sync.total", total),
		attribute.Int("sync.succeeded", result.SuccessCount),
		attribute.Int("sync.failed", result.FailedCount),
	)
	s.metrics.RecordRun(ctx, tenantID, module, result.Status, s.now().Sub(started))
	return result, err
}

func (s *SyncService) reconcileModule(ctx context.Context, engine *Engine, pager Pager, module integration.SyncModule) (int, error) {
	switch module {
	case integration.SyncModuleProducts:
		items, err := FetchAll[*integration.SourceProduct](ctx, pager, module, s.maxPages)
		if err != nil {
			return 0, err
		}
		engine.Products.ReconcileAll(ctx, items)
		return len(items), nil
	case integration.SyncModuleCustomers:
		items, err := FetchAll[*integration.SourceCustomer](ctx, pager, module, s.maxPages)
		if err != nil {
			return 0, err
		}
		engine.Customers.ReconcileAll(ctx, items)
		return len(items), nil
	case integration.SyncModuleOrders:
		items, err := FetchAll[*integration.SourceOrder](ctx, pager, module, s.maxPages)
		if err != nil {
			return 0, err
		}
		engine.Orders.ReconcileAll(ctx, items)
		return len(items), nil
	default:
		return 0, integration.ErrUnknownModule
	}
}

// flush persists entries. A failure is logged; the run itself has already
// happened on both platforms.
func (s *SyncService) flush(ctx context.Context, tenantID string, entries []integration.SyncLogEntry) {
	for _, e := range entries {
		s.metrics.RecordEntity(ctx, tenantID, e.Module, e.Action, e.Outcome)
	}
	if len(entries) == 0 {
		return
	}
	if err := s.logs.Flush(ctx, entries); err != nil {
		s.logger.Error("sync log flush failed",
			zap.String("tenant_id", tenantID),
			zap.Int("entries", len(entries)),
			zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Sweep
// ---------------------------------------------------------------------------

// SyncAll synchronizes every configured tenant, one after another. Tenant
// failures are logged and counted; only listing the tenants can fail the
// sweep.
func (s *SyncService) SyncAll(ctx context.Context) (*SweepReport, error) {
	tenants, err := s.tenants.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	sweep := &SweepReport{Tenants: len(tenants)}
	for _, t := range tenants {
		if ctx.Err() != nil {
			s.logger.Warn("sweep interrupted", zap.Int("remaining", sweep.Tenants-sweep.Succeeded-sweep.Failed-sweep.Skipped))
			break
		}
		if !t.IsConfigured() {
			sweep.Skipped++
			s.logger.Debug("tenant not configured, skipping", zap.String("tenant_id", t.ID))
			continue
		}

		report, err := s.SyncTenant(ctx, t.ID)
		if report != nil {
			sweep.Reports = append(sweep.Reports, report)
		}
		switch {
		case errors.Is(err, integration.ErrSyncInProgress):
			sweep.Skipped++
		case err != nil:
			sweep.Failed++
			s.logger.Error("tenant sync failed", zap.String("tenant_id", t.ID), zap.Error(err))
		default:
			sweep.Succeeded++
		}
	}
	return sweep, nil
}

// ---------------------------------------------------------------------------
// Per-tenant guard
// ---------------------------------------------------------------------------

// IsRunning reports whether a run is active for tenantID.
func (s *SyncService) IsRunning(tenantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[tenantID]
	return ok
}

func (s *SyncService) acquire(tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.running[tenantID]; ok {
		return integration.ErrSyncInProgress
	}
	s.running[tenantID] = struct{}{}
	return nil
}

func (s *SyncService) release(tenantID string) {
	s.mu.Lock()
	delete(s.running, tenantID)
	s.mu.Unlock()
}
