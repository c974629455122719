package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ integration.TenantRepository = (*GormTenantRepository)(nil)

// GormTenantRepository implements integration.TenantRepository using GORM
type GormTenantRepository struct {
	db     *gorm.DB
	cipher *SecretCipher
}

// NewGormTenantRepository creates a new GormTenantRepository. cipher may be
// nil, in which case secrets are stored as given.
func NewGormTenantRepository(db *gorm.DB, cipher *SecretCipher) *GormTenantRepository {
	return &GormTenantRepository{db: db, cipher: cipher}
}

// Get finds a tenant by its id
func (r *GormTenantRepository) Get(ctx context.Context, tenantID string) (*integration.Tenant, error) {
	if tenantID == "" {
		return nil, integration.ErrTenantInvalidID
	}
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrTenantNotFound
		}
		return nil, err
	}
	return r.toDomain(&model)
}

// Upsert inserts the tenant or replaces every column of the existing row
func (r *GormTenantRepository) Upsert(ctx context.Context, tenant *integration.Tenant) error {
	if tenant == nil || tenant.ID == "" {
		return integration.ErrTenantInvalidID
	}
	var model models.TenantModel
	model.FromDomain(tenant)

	var err error
	if model.AccessToken, err = r.cipher.Encrypt(model.AccessToken); err != nil {
		return err
	}
	if model.TargetConsumerSecret, err = r.cipher.Encrypt(model.TargetConsumerSecret); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"handle", "name", "description", "logo_url", "authorization_code", "access_token",
				"target_base_url", "target_consumer_key", "target_consumer_secret", "target_api_version",
				"updated_at",
			}),
		}).
		Create(&model).Error
}

// ListAll returns every tenant, oldest first
func (r *GormTenantRepository) ListAll(ctx context.Context) ([]*integration.Tenant, error) {
	var rows []models.TenantModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	tenants := make([]*integration.Tenant, 0, len(rows))
	for i := range rows {
		t, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (r *GormTenantRepository) toDomain(model *models.TenantModel) (*integration.Tenant, error) {
	t := model.ToDomain()
	var err error
	if t.AccessToken, err = r.cipher.Decrypt(t.AccessToken); err != nil {
		return nil, fmt.Errorf("tenant %s access token: %w", t.ID, err)
	}
	if t.Target != nil {
		if t.Target.ConsumerSecret, err = r.cipher.Decrypt(t.Target.ConsumerSecret); err != nil {
			return nil, fmt.Errorf("tenant %s consumer secret: %w", t.ID, err)
		}
	}
	return t, nil
}
