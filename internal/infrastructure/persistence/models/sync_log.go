package models

import (
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// SyncLogModel is the persistence model for an append-only sync log entry.
type SyncLogModel struct {
	ID         uuid.UUID               `gorm:"type:uuid;primary_key"`
	TenantID   string                  `gorm:"type:varchar(64);not null;index:idx_sync_logs_tenant_occurred,priority:1"`
	Module     integration.SyncModule  `gorm:"type:varchar(20);not null"`
	Action     integration.SyncAction  `gorm:"type:varchar(20);not null"`
	SubjectID  string                  `gorm:"type:varchar(128);not null"`
	Outcome    integration.SyncOutcome `gorm:"type:varchar(20);not null"`
	Message    string                  `gorm:"type:text"`
	OccurredAt time.Time               `gorm:"not null;index:idx_sync_logs_tenant_occurred,priority:2"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLogEntry.
func (m *SyncLogModel) ToDomain() integration.SyncLogEntry {
	return integration.SyncLogEntry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Module:     m.Module,
		Action:     m.Action,
		SubjectID:  m.SubjectID,
		Outcome:    m.Outcome,
		Message:    m.Message,
		OccurredAt: m.OccurredAt.UTC(),
	}
}

// SyncLogModelFromDomain builds the persistence model for an entry.
func SyncLogModelFromDomain(e integration.SyncLogEntry) SyncLogModel {
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return SyncLogModel{
		ID:         id,
		TenantID:   e.TenantID,
		Module:     e.Module,
		Action:     e.Action,
		SubjectID:  e.SubjectID,
		Outcome:    e.Outcome,
		Message:    e.Message,
		OccurredAt: e.OccurredAt.UTC(),
	}
}
