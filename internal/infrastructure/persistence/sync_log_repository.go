package persistence

import (
	"context"
	"fmt"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const (
	defaultSyncLogLimit = 50
	maxSyncLogLimit     = 500
	flushBatchSize      = 100
)

var _ integration.SyncLogRepository = (*GormSyncLogRepository)(nil)

// GormSyncLogRepository implements integration.SyncLogRepository using GORM.
// Rows are only ever inserted.
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Insert appends a single entry
func (r *GormSyncLogRepository) Insert(ctx context.Context, entry integration.SyncLogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	model := models.SyncLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Flush persists a batch in one transaction. The whole batch is rejected
// if any entry is invalid.
func (r *GormSyncLogRepository) Flush(ctx context.Context, entries []integration.SyncLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.SyncLogModel, 0, len(entries))
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: entry %d: %v", integration.ErrSyncLogFlushFailed, i, err)
		}
		rows = append(rows, models.SyncLogModelFromDomain(e))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, flushBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrSyncLogFlushFailed, err)
	}
	return nil
}

// ListForTenant returns entries most recent first, with the total count
// matching the filter.
func (r *GormSyncLogRepository) ListForTenant(ctx context.Context, tenantID string, filter integration.SyncLogFilter) ([]integration.SyncLogEntry, int64, error) {
	if tenantID == "" {
		return nil, 0, integration.ErrTenantInvalidID
	}

	query := r.db.WithContext(ctx).Model(&models.SyncLogModel{}).Scopes(TenantScope(tenantID))
	if filter.Module != nil {
		query = query.Where("module = ?", *filter.Module)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", *filter.Outcome)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSyncLogLimit
	}
	if limit > maxSyncLogLimit {
		limit = maxSyncLogLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.SyncLogModel
	if err := query.Order("occurred_at DESC, id DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]integration.SyncLogEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, total, nil
}
