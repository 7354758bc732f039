package inventory

import (
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the stock-keeping view of a catalog product.
// Stock is held in base units; ConversionToBase converts one selling unit to base units.
type Product struct {
	shared.TenantAggregateRoot
	Code             string
	Name             string
	Stock            decimal.Decimal
	ConversionToBase decimal.Decimal
}

// NewProduct creates a product with zero stock
func NewProduct(tenantID uuid.UUID, code, name string, conversionToBase decimal.Decimal) (*Product, error) {
	if code == "" || name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product code and name are required")
	}
	if conversionToBase.IsZero() {
		conversionToBase = decimal.NewFromInt(1)
	}
	if conversionToBase.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Conversion to base must be positive")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Stock:               decimal.Zero,
		ConversionToBase:    conversionToBase,
	}, nil
}

// ToBaseUnits converts a quantity in selling units to base units
func ToBaseUnits(quantity, conversionToBase decimal.Decimal) decimal.Decimal {
	if conversionToBase.IsZero() {
		return quantity
	}
	return quantity.Mul(conversionToBase)
}
