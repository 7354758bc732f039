package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND domain error
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NotFoundf(format, args...)
	}
	return err
}

// saveVersioned inserts a new aggregate (version 1) or updates an existing
// one guarded by its previous version. Domain methods bump the version before
// the row is written, so the stored row must still hold version-1.
func saveVersioned(ctx context.Context, db *gorm.DB, model any, tenantID, id uuid.UUID, version int) error {
	if version <= 1 {
		return db.WithContext(ctx).Create(model).Error
	}
	result := db.WithContext(ctx).
		Model(model).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ? AND version = ?", id, version-1).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// nextDocumentNumber returns the next number of the form PREFIX-YYYY-NNNNN
// for a tenant, continuing from the highest number issued this year.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, table, column, docPrefix string, tenantID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", docPrefix, time.Now().Year())

	var last []string
	if err := db.WithContext(ctx).
		Table(table).
		Scopes(tenant.Scope(tenantID)).
		Where(column+" LIKE ?", prefix+"%").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &last).Error; err != nil {
		return "", err
	}

	next := 1
	if len(last) == 1 {
		if n, err := strconv.Atoi(strings.TrimPrefix(last[0], prefix)); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}
