package integration

import "errors"

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	ErrSourceRequestFailed   = errors.New("integration: source request failed")
	ErrSourceInvalidResponse = errors.New("integration: invalid source response")
	ErrSourceUnavailable     = errors.New("integration: source temporarily unavailable")
	ErrTargetRequestFailed   = errors.New("integration: target request failed")
	ErrTargetInvalidResponse = errors.New("integration: invalid target response")
	ErrTargetUnavailable     = errors.New("integration: target temporarily unavailable")
	ErrTargetNotFound        = errors.New("integration: target entity not found")
	ErrPaginationLimit       = errors.New("integration: pagination limit exceeded")
)

// ---------------------------------------------------------------------------
// Reconciliation Errors
// ---------------------------------------------------------------------------

var (
	ErrAmbiguousMatch      = errors.New("integration: natural key matches more than one target entity")
	ErrMissingTargetID     = errors.New("integration: target id missing from response")
	ErrInvalidEntity       = errors.New("integration: invalid source entity")
	ErrChildSyncFailed     = errors.New("integration: sub-resource sync failed")
	ErrWriteBackFailed     = errors.New("integration: source metadata write-back failed")
	ErrSyncInProgress      = errors.New("integration: sync already in progress for tenant")
	ErrUnknownModule       = errors.New("integration: unknown sync module")
	ErrReconcilePanicked   = errors.New("integration: reconciliation panicked")
	ErrNothingToDelete     = errors.New("integration: entity is not linked to a target entity")
	ErrSyncLogFlushFailed  = errors.New("integration: sync log flush failed")
	ErrSyncLogInvalidEntry = errors.New("integration: invalid sync log entry")
)

// ---------------------------------------------------------------------------
// Webhook Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidPayload = errors.New("integration: invalid webhook payload")
	ErrUnknownEvent   = errors.New("integration: unknown webhook event")
)

// ---------------------------------------------------------------------------
// Tenant Errors
// ---------------------------------------------------------------------------

var (
	ErrTenantNotFound        = errors.New("integration: tenant not found")
	ErrTenantNotConfigured   = errors.New("integration: tenant configuration incomplete")
	ErrTenantInvalidID       = errors.New("integration: invalid tenant ID")
	ErrTenantInvalidConfig   = errors.New("integration: invalid tenant configuration")
	ErrCallbackInvalidParams = errors.New("integration: invalid authorization callback parameters")
	ErrCallbackInvalidHMAC   = errors.New("integration: invalid authorization callback signature")
)
