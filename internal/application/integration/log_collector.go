package integration

import (
	"sync"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
)

// LogCollector accumulates the sync log entries of one run. A collector is
// owned by a single run and drained by its caller, which flushes the
// entries to the SyncLogRepository.
type LogCollector struct {
	tenantID string
	now      func() time.Time

	mu      sync.Mutex
	entries []integration.SyncLogEntry
}

// NewLogCollector creates a collector for tenantID.
func NewLogCollector(tenantID string, now func() time.Time) *LogCollector {
	if now == nil {
		now = time.Now
	}
	return &LogCollector{tenantID: tenantID, now: now}
}

// TenantID returns the tenant the collector records for.
func (c *LogCollector) TenantID() string {
	return c.tenantID
}

// Success records a successful attempt.
func (c *LogCollector) Success(module integration.SyncModule, action integration.SyncAction, subjectID string) {
	c.record(module, action, subjectID, integration.SyncOutcomeSuccess, "")
}

// Failure records a failed attempt with err as its message.
func (c *LogCollector) Failure(module integration.SyncModule, action integration.SyncAction, subjectID string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	c.record(module, action, subjectID, integration.SyncOutcomeFailed, msg)
}

func (c *LogCollector) record(
	module integration.SyncModule,
	action integration.SyncAction,
	subjectID string,
	outcome integration.SyncOutcome,
	message string,
) {
	entry := integration.NewSyncLogEntry(c.tenantID, module, action, subjectID, outcome, message, c.now())
	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()
}

// Entries returns a copy of the recorded entries.
func (c *LogCollector) Entries() []integration.SyncLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]integration.SyncLogEntry(nil), c.entries...)
}

// Len returns the number of pending entries.
func (c *LogCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Drain returns the recorded entries and empties the collector.
func (c *LogCollector) Drain() []integration.SyncLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.entries
	c.entries = nil
	return out
}
