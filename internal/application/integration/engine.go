package integration

import (
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// Engine bundles the reconcilers of one run. Batch sync and webhooks both
// go through an Engine, so it is the single reconciliation authority.
type Engine struct {
	Products  *Reconciler[*integration.SourceProduct]
	Customers *Reconciler[*integration.SourceCustomer]
	Orders    *Reconciler[*integration.SourceOrder]

	logs *LogCollector
}

// NewEngine creates the reconcilers for one tenant run, all recording into
// logs.
func NewEngine(
	source integration.SourceCatalog,
	target integration.TargetStore,
	logs *LogCollector,
	logger *zap.Logger,
	now func() time.Time,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("tenant_id", logs.TenantID()))

	products := NewReconciler[*integration.SourceProduct](newProductStrategy(source, target), logs, logger, now)
	return &Engine{
		Products:  products,
		Customers: NewReconciler[*integration.SourceCustomer](&customerStrategy{source: source, target: target}, logs, logger, now),
		Orders:    NewReconciler[*integration.SourceOrder](newOrderStrategy(source, target, products), logs, logger, now),
		logs:      logs,
	}
}

// Logs returns the collector the engine records into.
func (e *Engine) Logs() *LogCollector {
	return e.logs
}
