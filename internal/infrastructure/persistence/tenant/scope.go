// Package tenant provides tenant scoping for GORM queries.
//
// Every ledger repository filters by tenant through Scope:
//
//	db.Scopes(tenant.Scope(tenantID)).Find(&returns) // WHERE tenant_id = ?
//
// A nil tenant ID is a programming error; the scope turns it into a query
// error instead of silently reading across tenants.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a query is scoped to the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope restricts a query to rows of tenantID
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return ScopeColumn("tenant_id", tenantID)
}

// ScopeColumn restricts a query on a qualified tenant column, for joins
// (for example "sale_returns.tenant_id")
func ScopeColumn(column string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(column+" = ?", tenantID)
	}
}
