package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// States
// ---------------------------------------------------------------------------

// ReconcileState is a step of the per-entity upsert state machine.
type ReconcileState string

const (
	StatePending           ReconcileState = "PENDING"
	StateCheckingExistence ReconcileState = "CHECKING_EXISTENCE"
	StateCreating          ReconcileState = "CREATING"
	StateUpdating          ReconcileState = "UPDATING"
	StateLinkingBack       ReconcileState = "LINKING_BACK"
	StateSucceeded         ReconcileState = "SUCCEEDED"
	StateRolledBack        ReconcileState = "ROLLED_BACK"
	StateFailed            ReconcileState = "FAILED"
)

// IsTerminal reports whether no further transition is possible.
func (s ReconcileState) IsTerminal() bool {
	return s == StateSucceeded || s == StateRolledBack || s == StateFailed
}

// Outcome is the terminal result of reconciling one entity.
type Outcome struct {
	SubjectID string
	Action    integration.SyncAction
	State     ReconcileState
	TargetID  int64
	Err       error
}

// Succeeded reports whether the entity reached SUCCEEDED.
func (o Outcome) Succeeded() bool {
	return o.State == StateSucceeded
}

// ---------------------------------------------------------------------------
// Strategy
// ---------------------------------------------------------------------------

// Strategy supplies the entity-specific steps of a reconciliation.
type Strategy[E any] interface {
	Module() integration.SyncModule
	SubjectID(e E) string
	Metadata(e E) integration.Metadata
	Resolve(ctx context.Context, e E) (Resolution, error)
	Create(ctx context.Context, e E) (int64, error)
	Update(ctx context.Context, e E, targetID int64) error
	// Delete removes a TARGET entity, bypassing any trash.
	Delete(ctx context.Context, targetID int64) error
	WriteBack(ctx context.Context, e E, md integration.Metadata) error
}

// ChildSyncer is implemented by strategies whose entities own
// sub-resources. It runs after the parent create or update; a failure is
// a failure of the parent.
type ChildSyncer[E any] interface {
	SyncChildren(ctx context.Context, e E, targetID int64, created bool) error
}

// ---------------------------------------------------------------------------
// Reconciler
// ---------------------------------------------------------------------------

// Reconciler runs the upsert state machine for one entity type. It records
// every terminal outcome in its LogCollector.
type Reconciler[E any] struct {
	strategy Strategy[E]
	children ChildSyncer[E]
	logs     *LogCollector
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates a reconciler. If strategy also implements
// ChildSyncer, sub-resources are synced as part of every upsert.
func NewReconciler[E any](strategy Strategy[E], logs *LogCollector, logger *zap.Logger, now func() time.Time) *Reconciler[E] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	r := &Reconciler[E]{
		strategy: strategy,
		logs:     logs,
		logger:   logger.With(zap.String("module", strategy.Module().String())),
		now:      now,
	}
	if cs, ok := strategy.(ChildSyncer[E]); ok {
		r.children = cs
	}
	return r
}

// ReconcileAll reconciles entities one at a time. A failing or panicking
// entity is recorded and skipped. Iteration stops early only when ctx is
// done; entities not reached are not logged.
func (r *Reconciler[E]) ReconcileAll(ctx context.Context, entities []E) []Outcome {
	outcomes := make([]Outcome, 0, len(entities))
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("reconciliation interrupted",
				zap.Int("processed", len(outcomes)),
				zap.Int("total", len(entities)),
				zap.Error(err))
			break
		}
		outcomes = append(outcomes, r.Reconcile(ctx, e))
	}
	return outcomes
}

// Reconcile runs the state machine for a single entity.
func (r *Reconciler[E]) Reconcile(ctx context.Context, e E) (out Outcome) {
	st := &Outcome{State: StatePending, Action: integration.SyncActionCreate}
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: %v", integration.ErrReconcilePanicked, rec)
			r.logger.Error("reconciliation panicked",
				zap.String("subject_id", st.SubjectID),
				zap.String("state", string(st.State)),
				zap.Any("panic", rec))
			switch {
			case st.State == StateRolledBack:
				// the compensating delete itself panicked
				r.logs.Failure(r.strategy.Module(), st.Action, st.SubjectID, err)
			case st.Action == integration.SyncActionCreate && st.TargetID > 0 &&
				(st.State == StateCreating || st.State == StateLinkingBack):
				r.rollback(ctx, st, err)
			default:
				r.fail(st, err)
			}
			out = *st
		}
	}()

	st.SubjectID = r.strategy.SubjectID(e)
	r.reconcile(ctx, e, st)
	return *st
}

func (r *Reconciler[E]) reconcile(ctx context.Context, e E, st *Outcome) {
	st.State = StateCheckingExistence
	res, err := r.strategy.Resolve(ctx, e)
	if err != nil {
		r.fail(st, err)
		return
	}
	if res.Exists {
		r.update(ctx, e, res, st)
		return
	}
	r.create(ctx, e, st)
}

func (r *Reconciler[E]) update(ctx context.Context, e E, res Resolution, st *Outcome) {
	st.Action = integration.SyncActionUpdate
	st.State = StateUpdating
	st.TargetID = res.TargetID

	if err := r.strategy.Update(ctx, e, res.TargetID); err != nil {
		r.fail(st, err)
		return
	}
	if r.children != nil {
		if err := r.children.SyncChildren(ctx, e, res.TargetID, false); err != nil {
			r.fail(st, fmt.Errorf("%w: %w", integration.ErrChildSyncFailed, err))
			return
		}
	}

	// refresh the link; a failure leaves no orphan so it is not fatal
	st.State = StateLinkingBack
	md := r.strategy.Metadata(e).WithLink(res.TargetID, r.now())
	if err := r.strategy.WriteBack(ctx, e, md); err != nil {
		r.logger.Warn("link refresh after update failed",
			zap.String("subject_id", st.SubjectID),
			zap.Int64("target_id", res.TargetID),
			zap.Bool("adopted", res.Adopted),
			zap.Error(err))
	}

	st.State = StateSucceeded
	r.logs.Success(r.strategy.Module(), st.Action, st.SubjectID)
}

func (r *Reconciler[E]) create(ctx context.Context, e E, st *Outcome) {
	st.State = StateCreating
	id, err := r.strategy.Create(ctx, e)
	if id > 0 {
		st.TargetID = id
	}
	if err != nil {
		if st.TargetID > 0 {
			r.rollback(ctx, st, err)
			return
		}
		r.fail(st, err)
		return
	}
	if id <= 0 {
		r.fail(st, integration.ErrMissingTargetID)
		return
	}

	if r.children != nil {
		if err := r.children.SyncChildren(ctx, e, id, true); err != nil {
			r.rollback(ctx, st, fmt.Errorf("%w: %w", integration.ErrChildSyncFailed, err))
			return
		}
	}

	st.State = StateLinkingBack
	md := r.strategy.Metadata(e).WithLink(id, r.now())
	if err := r.strategy.WriteBack(ctx, e, md); err != nil {
		r.rollback(ctx, st, fmt.Errorf("%w: %w", integration.ErrWriteBackFailed, err))
		return
	}

	st.State = StateSucceeded
	r.logs.Success(r.strategy.Module(), st.Action, st.SubjectID)
}

// rollback deletes the TARGET entity created for st. A failed delete is
// logged and never returned.
func (r *Reconciler[E]) rollback(ctx context.Context, st *Outcome, cause error) {
	st.State = StateRolledBack
	st.Err = cause
	if derr := r.strategy.Delete(ctx, st.TargetID); derr != nil {
		r.logger.Error("rollback failed, target entity left unlinked",
			zap.String("subject_id", st.SubjectID),
			zap.Int64("target_id", st.TargetID),
			zap.NamedError("cause", cause),
			zap.Error(derr))
	} else {
		r.logger.Info("rolled back target entity",
			zap.String("subject_id", st.SubjectID),
			zap.Int64("target_id", st.TargetID),
			zap.NamedError("cause", cause))
	}
	r.logs.Failure(r.strategy.Module(), st.Action, st.SubjectID, cause)
}

func (r *Reconciler[E]) fail(st *Outcome, err error) {
	level := r.logger.Warn
	if errors.Is(err, integration.ErrReconcilePanicked) {
		level = r.logger.Error
	}
	level("reconciliation failed",
		zap.String("subject_id", st.SubjectID),
		zap.String("action", string(st.Action)),
		zap.String("state", string(st.State)),
		zap.Error(err))
	st.State = StateFailed
	st.Err = err
	r.logs.Failure(r.strategy.Module(), st.Action, st.SubjectID, err)
}
