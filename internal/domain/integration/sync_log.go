package integration

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncModule / SyncAction / SyncOutcome
// ---------------------------------------------------------------------------

// SyncModule identifies the entity family being synchronized.
type SyncModule string

const (
	SyncModuleProducts  SyncModule = "products"
	SyncModuleCustomers SyncModule = "customers"
	SyncModuleOrders    SyncModule = "orders"
)

// AllSyncModules lists modules in the order a full run processes them.
var AllSyncModules = []SyncModule{SyncModuleProducts, SyncModuleCustomers, SyncModuleOrders}

// IsValid returns true if the module is known
func (m SyncModule) IsValid() bool {
	switch m {
	case SyncModuleProducts, SyncModuleCustomers, SyncModuleOrders:
		return true
	default:
		return false
	}
}

func (m SyncModule) String() string {
	return string(m)
}

// ParseSyncModule parses a module name, accepting singular forms.
func ParseSyncModule(s string) (SyncModule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "products", "product":
		return SyncModuleProducts, nil
	case "customers", "customer":
		return SyncModuleCustomers, nil
	case "orders", "order":
		return SyncModuleOrders, nil
	default:
		return "", ErrUnknownModule
	}
}

// SyncAction is the operation attempted on the TARGET side.
type SyncAction string

const (
	SyncActionCreate SyncAction = "create"
	SyncActionUpdate SyncAction = "update"
	SyncActionDelete SyncAction = "delete"
)

// IsValid returns true if the action is known
func (a SyncAction) IsValid() bool {
	switch a {
	case SyncActionCreate, SyncActionUpdate, SyncActionDelete:
		return true
	default:
		return false
	}
}

// SyncOutcome is the final result of one attempt.
type SyncOutcome string

const (
	SyncOutcomeSuccess SyncOutcome = "success"
	SyncOutcomeFailed  SyncOutcome = "failed"
)

// IsValid returns true if the outcome is known
func (o SyncOutcome) IsValid() bool {
	return o == SyncOutcomeSuccess || o == SyncOutcomeFailed
}

// ---------------------------------------------------------------------------
// SyncLogEntry
// ---------------------------------------------------------------------------

// SyncLogEntry is an immutable record of one create/update/delete attempt.
type SyncLogEntry struct {
	ID         uuid.UUID
	TenantID   string
	Module     SyncModule
	Action     SyncAction
	SubjectID  string
	Outcome    SyncOutcome
	Message    string
	OccurredAt time.Time
}

// NewSyncLogEntry creates a log entry stamped with a fresh id.
func NewSyncLogEntry(
	tenantID string,
	module SyncModule,
	action SyncAction,
	subjectID string,
	outcome SyncOutcome,
	message string,
	at time.Time,
) SyncLogEntry {
	return SyncLogEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Module:     module,
		Action:     action,
		SubjectID:  subjectID,
		Outcome:    outcome,
		Message:    message,
		OccurredAt: at.UTC(),
	}
}

// Validate checks that the entry can be persisted.
func (e SyncLogEntry) Validate() error {
	if e.TenantID == "" {
		return ErrTenantInvalidID
	}
	if !e.Module.IsValid() || !e.Action.IsValid() || !e.Outcome.IsValid() {
		return ErrSyncLogInvalidEntry
	}
	if e.SubjectID == "" || e.OccurredAt.IsZero() {
		return ErrSyncLogInvalidEntry
	}
	return nil
}

// Succeeded reports whether the attempt succeeded.
func (e SyncLogEntry) Succeeded() bool {
	return e.Outcome == SyncOutcomeSuccess
}

// ---------------------------------------------------------------------------
// SyncLogRepository
// ---------------------------------------------------------------------------

// SyncLogFilter narrows the dashboard listing.
type SyncLogFilter struct {
	// Module filters by entity family (optional)
	Module *SyncModule
	// Outcome filters by result (optional)
	Outcome *SyncOutcome
	Limit   int
	Offset  int
}

// SyncLogRepository is the append-only sink for sync log entries.
// There are no update or delete operations.
type SyncLogRepository interface {
	// Insert appends a single entry.
	Insert(ctx context.Context, entry SyncLogEntry) error
	// Flush persists a batch collected during one run.
	Flush(ctx context.Context, entries []SyncLogEntry) error
	// ListForTenant returns entries most recent first, with the total count.
	ListForTenant(ctx context.Context, tenantID string, filter SyncLogFilter) ([]SyncLogEntry, int64, error)
}
