package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DispatchStatus is how a webhook delivery was handled.
type DispatchStatus string

const (
	DispatchProcessed DispatchStatus = "processed"
	DispatchSkipped   DispatchStatus = "skipped"
	DispatchFailed    DispatchStatus = "failed"
)

// DispatchResult describes a handled webhook delivery.
type DispatchResult struct {
	Event     string
	TenantID  string
	SubjectID string
	Status    DispatchStatus
	Action    integration.SyncAction
	State     ReconcileState
	TargetID  int64
	// Reason explains a skip or a failure.
	Reason string
}

// WebhookDispatcherConfig holds the WebhookDispatcher collaborators.
type WebhookDispatcherConfig struct {
	Tenants         integration.TenantRepository
	Logs            integration.SyncLogRepository
	SourceConnector integration.SourceConnector
	TargetConnector integration.TargetConnector
	// Guard is optional; without it only the metadata timestamp debounces.
	Guard integration.DebounceGuard
	// Archive is optional.
	Archive integration.PayloadArchive
	Metrics SyncMetrics
	Logger  *zap.Logger
	// Window defaults to integration.DefaultDebounceWindow.
	Window time.Duration
	Now    func() time.Time
}

// WebhookDispatcher routes single-entity change events to the same
// reconcilers the batch sync uses.
type WebhookDispatcher struct {
	cfg    WebhookDispatcherConfig
	logger *zap.Logger
	tracer trace.Tracer
}

// NewWebhookDispatcher creates a WebhookDispatcher.
func NewWebhookDispatcher(cfg WebhookDispatcherConfig) *WebhookDispatcher {
	if cfg.Window <= 0 {
		cfg.Window = integration.DefaultDebounceWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookDispatcher{cfg: cfg, logger: logger, tracer: otel.Tracer(tracerName)}
}

// Dispatch handles one delivery. raw is the request body, archived when an
// archive is configured. Payload, event and tenant errors are returned as
// the matching integration sentinels; a reconciliation failure is not an
// error and is reported through the result.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, ev integration.WebhookEvent, raw []byte) (res *DispatchResult, err error) {
	ctx, span := d.tracer.Start(ctx, "webhook.dispatch", trace.WithAttributes(attribute.String("webhook.event", ev.Event)))
	defer func() {
		result := "error"
		if res != nil {
			result = string(res.Status)
		}
		d.cfg.Metrics.RecordWebhook(ctx, ev.Event, result)
		span.End()
	}()

	if strings.TrimSpace(ev.Event) == "" || len(ev.Entity) == 0 {
		return nil, integration.ErrInvalidPayload
	}
	env, err := ev.Envelope()
	if err != nil {
		return nil, err
	}
	eventType, err := integration.ParseEntityEventType(ev.Event)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, ev.Event)
	}

	tenant, err := d.cfg.Tenants.Get(ctx, env.CompanyID)
	if err != nil {
		return nil, err
	}
	tcfg, err := tenant.Configuration()
	if err != nil {
		return nil, err
	}

	log := d.logger.With(
		zap.String("tenant_id", tenant.ID),
		zap.String("event", ev.Event),
		zap.String("subject_id", env.ID),
	)
	span.SetAttributes(attribute.String("tenant.id", tenant.ID), attribute.String("subject.id", env.ID))
	d.archive(ctx, log, tenant.ID, ev.Event, raw)

	res = &DispatchResult{Event: ev.Event, TenantID: tenant.ID, SubjectID: env.ID}

	var claim string
	if !eventType.IsDelete() {
		key, skip, reason := d.debounce(ctx, log, tenant.ID, eventType.Module, env)
		if skip {
			res.Status = DispatchSkipped
			res.Reason = reason
			log.Info("webhook debounced", zap.String("reason", reason))
			return res, nil
		}
		claim = key
	}
	defer func() {
		// failed attempts give up their claim
		if claim != "" && (err != nil || res == nil || res.Status == DispatchFailed) {
			d.release(log, claim)
		}
	}()

	catalog, err := d.cfg.SourceConnector.Source(tcfg)
	if err != nil {
		return nil, fmt.Errorf("open source client: %w", err)
	}
	store, err := d.cfg.TargetConnector.Target(tcfg)
	if err != nil {
		return nil, fmt.Errorf("open target client: %w", err)
	}
	logs := NewLogCollector(tenant.ID, d.cfg.Now)
	defer d.flush(ctx, log, logs)

	if eventType.IsDelete() {
		d.delete(ctx, store, eventType.Module, env, logs, res)
		log.Info("webhook delete handled", zap.String("status", string(res.Status)), zap.String("reason", res.Reason))
		return res, nil
	}

	engine := NewEngine(catalog, store, logs, d.logger, d.cfg.Now)
	out, err := d.upsert(ctx, engine, catalog, eventType.Module, env, ev.Entity)
	if err != nil {
		return nil, err
	}
	res.Action = out.Action
	res.State = out.State
	res.TargetID = out.TargetID
	res.Status = DispatchProcessed
	if !out.Succeeded() {
		res.Status = DispatchFailed
		if out.Err != nil {
			res.Reason = out.Err.Error()
		}
	}
	log.Info("webhook upsert handled", zap.String("state", string(out.State)), zap.Int64("target_id", out.TargetID))
	return res, nil
}

// debounce reports whether the delivery should be skipped: the entity was
// synced inside the window, or another delivery already claimed it. The
// returned key is set when this delivery holds the claim.
func (d *WebhookDispatcher) debounce(ctx context.Context, log *zap.Logger, tenantID string, module integration.SyncModule, env integration.EntityEnvelope) (string, bool, string) {
	if env.Metadata.SyncedWithin(d.cfg.Now(), d.cfg.Window) {
		return "", true, "synced within debounce window"
	}
	if d.cfg.Guard == nil {
		return "", false, ""
	}
	key := fmt.Sprintf("webhook:%s:%s:%s", tenantID, module, env.ID)
	claimed, err := d.cfg.Guard.Claim(ctx, key, d.cfg.Window)
	if err != nil {
		// the metadata check above already ran
		log.Warn("debounce guard unavailable", zap.Error(err))
		return "", false, ""
	}
	if !claimed {
		return "", true, "duplicate delivery within debounce window"
	}
	return key, false, ""
}

// release drops a claim with a fresh context, so a cancelled request still
// frees it.
func (d *WebhookDispatcher) release(log *zap.Logger, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.cfg.Guard.Release(ctx, key); err != nil {
		log.Warn("failed to release debounce claim", zap.String("key", key), zap.Error(err))
	}
}

func (d *WebhookDispatcher) upsert(
	ctx context.Context,
	engine *Engine,
	catalog integration.SourceCatalog,
	module integration.SyncModule,
	env integration.EntityEnvelope,
	entity json.RawMessage,
) (Outcome, error) {
	switch module {
	case integration.SyncModuleProducts:
		// webhook product payloads omit variants and options
		p, err := catalog.GetProduct(ctx, env.ID)
		if err != nil {
			return Outcome{}, fmt.Errorf("fetch product %s: %w", env.ID, err)
		}
		return engine.Products.Reconcile(ctx, p), nil
	case integration.SyncModuleCustomers:
		var c integration.SourceCustomer
		if err := json.Unmarshal(entity, &c); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", integration.ErrInvalidPayload, err)
		}
		return engine.Customers.Reconcile(ctx, &c), nil
	case integration.SyncModuleOrders:
		var o integration.SourceOrder
		if err := json.Unmarshal(entity, &o); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", integration.ErrInvalidPayload, err)
		}
		return engine.Orders.Reconcile(ctx, &o), nil
	default:
		return Outcome{}, integration.ErrUnknownModule
	}
}

// delete removes the linked TARGET entity directly. A TARGET not-found is
// treated as already deleted.
func (d *WebhookDispatcher) delete(
	ctx context.Context,
	store integration.TargetStore,
	module integration.SyncModule,
	env integration.EntityEnvelope,
	logs *LogCollector,
	res *DispatchResult,
) {
	res.Action = integration.SyncActionDelete

	targetID, err := d.deleteTarget(ctx, store, module, env)
	if errors.Is(err, integration.ErrNothingToDelete) {
		res.Status = DispatchSkipped
		res.Reason = err.Error()
		return
	}
	if err == nil {
		res.TargetID = targetID
		switch module {
		case integration.SyncModuleProducts:
			err = store.DeleteProduct(ctx, targetID)
		case integration.SyncModuleCustomers:
			err = store.DeleteCustomer(ctx, targetID)
		case integration.SyncModuleOrders:
			err = store.DeleteOrder(ctx, targetID)
		default:
			err = integration.ErrUnknownModule
		}
		if errors.Is(err, integration.ErrTargetNotFound) {
			err = nil
		}
	}

	if err != nil {
		res.Status = DispatchFailed
		res.Reason = err.Error()
		logs.Failure(module, integration.SyncActionDelete, env.ID, err)
		return
	}
	res.Status = DispatchProcessed
	logs.Success(module, integration.SyncActionDelete, env.ID)
}

// deleteTarget finds the TARGET id to delete: the metadata link, or for
// customers a single exact email match.
func (d *WebhookDispatcher) deleteTarget(ctx context.Context, store integration.TargetStore, module integration.SyncModule, env integration.EntityEnvelope) (int64, error) {
	if env.Metadata.HasTargetID() {
		return env.Metadata.TargetIDValue(), nil
	}
	if module != integration.SyncModuleCustomers {
		return 0, integration.ErrNothingToDelete
	}
	res, err := IdentityMapper{}.ResolveCustomer(ctx, store, &integration.SourceCustomer{ID: env.ID, Email: env.Email})
	if err != nil {
		return 0, err
	}
	if !res.Exists {
		return 0, integration.ErrNothingToDelete
	}
	return res.TargetID, nil
}

func (d *WebhookDispatcher) archive(ctx context.Context, log *zap.Logger, tenantID, event string, raw []byte) {
	if d.cfg.Archive == nil || len(raw) == 0 {
		return
	}
	key, err := d.cfg.Archive.Archive(ctx, tenantID, event, raw)
	if err != nil {
		log.Warn("webhook archive failed", zap.Error(err))
		return
	}
	log.Debug("webhook archived", zap.String("key", key))
}

func (d *WebhookDispatcher) flush(ctx context.Context, log *zap.Logger, logs *LogCollector) {
	entries := logs.Drain()
	if len(entries) == 0 {
		return
	}
	for _, e := range entries {
		d.cfg.Metrics.RecordEntity(ctx, e.TenantID, e.Module, e.Action, e.Outcome)
	}
	if err := d.cfg.Logs.Flush(ctx, entries); err != nil {
		log.Error("sync log flush failed", zap.Int("entries", len(entries)), zap.Error(err))
	}
}
