package integration

import "time"

// SyncStatus is the overall status of a module run.
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusPartial SyncStatus = "PARTIAL"
	SyncStatusFailed  SyncStatus = "FAILED"
	SyncStatusSkipped SyncStatus = "SKIPPED"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusSuccess, SyncStatusPartial, SyncStatusFailed, SyncStatusSkipped:
		return true
	default:
		return false
	}
}

func (s SyncStatus) String() string {
	return string(s)
}

// SyncFailure describes one failed entity.
type SyncFailure struct {
	SubjectID    string
	Action       SyncAction
	ErrorMessage string
}

// SyncResult summarizes one module run for one tenant.
type SyncResult struct {
	Module       SyncModule
	Status       SyncStatus
	TotalCount   int
	SuccessCount int
	FailedCount  int
	FailedItems  []SyncFailure
	// Error is set when the fetch phase aborted the module.
	Error    string
	SyncedAt time.Time
}

// NewSyncResult builds a result from the log entries recorded for module.
// Only entries whose module matches are counted; nested product entries
// created during an order run are reported on the products module.
func NewSyncResult(module SyncModule, total int, entries []SyncLogEntry, at time.Time) *SyncResult {
	r := &SyncResult{Module: module, TotalCount: total, SyncedAt: at}
	for _, e := range entries {
		if e.Module != module {
			continue
		}
		if e.Succeeded() {
			r.SuccessCount++
			continue
		}
		r.FailedCount++
		r.FailedItems = append(r.FailedItems, SyncFailure{
			SubjectID:    e.SubjectID,
			Action:       e.Action,
			ErrorMessage: e.Message,
		})
	}
	r.Status = statusFromCounts(r.SuccessCount, r.FailedCount)
	return r
}

// NewFailedSyncResult reports a module aborted before reconciliation.
func NewFailedSyncResult(module SyncModule, err error, at time.Time) *SyncResult {
	return &SyncResult{Module: module, Status: SyncStatusFailed, Error: err.Error(), SyncedAt: at}
}

func statusFromCounts(success, failed int) SyncStatus {
	switch {
	case failed == 0:
		return SyncStatusSuccess
	case success == 0:
		return SyncStatusFailed
	default:
		return SyncStatusPartial
	}
}
