package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/reconciler/internal/domain/identity"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTenantRepository implements identity.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Tenant %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindActiveIDs returns the IDs of every active tenant, ordered by ID
func (r *GormTenantRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("status = ?", identity.TenantStatusActive).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, t *identity.Tenant) error {
	return r.db.WithContext(ctx).Save(models.TenantModelFromDomain(t)).Error
}

// GormTenantSettingRepository implements identity.TenantSettingRepository using GORM
type GormTenantSettingRepository struct {
	db *gorm.DB
}

// NewGormTenantSettingRepository creates a new GormTenantSettingRepository
func NewGormTenantSettingRepository(db *gorm.DB) *GormTenantSettingRepository {
	return &GormTenantSettingRepository{db: db}
}

// Get returns a setting value and whether it is set
func (r *GormTenantSettingRepository) Get(ctx context.Context, tenantID uuid.UUID, key string) (string, bool, error) {
	var model models.TenantSettingModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("key = ?", key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return model.Value, true, nil
}

// Set writes a setting value, replacing any previous one
func (r *GormTenantSettingRepository) Set(ctx context.Context, tenantID uuid.UUID, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&models.TenantSettingModel{
			TenantID:  tenantID,
			Key:       key,
			Value:     value,
			UpdatedAt: time.Now(),
		}).Error
}
