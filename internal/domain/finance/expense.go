package finance

import (
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnWriteOffCategoryName is the expense category created on demand for
// returned goods written off as a total loss
const ReturnWriteOffCategoryName = "Return Write-off"

// ExpenseSourceSaleReturn tags expenses created by return processing
const ExpenseSourceSaleReturn = "SALE_RETURN"

// ExpenseCategory is a tenant-scoped expense classification
type ExpenseCategory struct {
	shared.BaseEntity
	TenantID uuid.UUID
	Name     string
}

// NewExpenseCategory creates an expense category
func NewExpenseCategory(tenantID uuid.UUID, name string) *ExpenseCategory {
	return &ExpenseCategory{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Name:       name,
	}
}

// Expense is a cost recorded against a category
type Expense struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	CategoryID  uuid.UUID
	BranchID    *uuid.UUID
	Amount      decimal.Decimal
	Description string
	SourceType  string
	SourceID    *uuid.UUID
}

// NewWriteOffExpense creates the expense for one written-off return line
func NewWriteOffExpense(tenantID, categoryID uuid.UUID, branchID *uuid.UUID, returnID uuid.UUID, amount decimal.Decimal, description string) (*Expense, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Expense amount cannot be negative")
	}
	return &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		CategoryID:  categoryID,
		BranchID:    branchID,
		Amount:      amount,
		Description: description,
		SourceType:  ExpenseSourceSaleReturn,
		SourceID:    &returnID,
	}, nil
}
