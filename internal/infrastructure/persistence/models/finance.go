package models

import (
	"time"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate.
// A non-null sale_return_id marks a refund.
type PaymentModel struct {
	TenantAggregateModel
	CustomerID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status       finance.PaymentStatus `gorm:"type:varchar(20);not null"`
	SaleID       *uuid.UUID            `gorm:"type:uuid;index"`
	SaleReturnID *uuid.UUID            `gorm:"type:uuid;index"`
	Method       string                `gorm:"type:varchar(50)"`
	Reference    string                `gorm:"type:varchar(100)"`
	PaidAt       time.Time             `gorm:"not null"`
	VoidedAt     *time.Time
	VoidReason   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantAggregateRoot: m.tenantRoot(),
		CustomerID:          m.CustomerID,
		Amount:              m.Amount,
		Status:              m.Status,
		SaleID:              m.SaleID,
		SaleReturnID:        m.SaleReturnID,
		Method:              m.Method,
		Reference:           m.Reference,
		PaidAt:              m.PaidAt,
		VoidedAt:            m.VoidedAt,
		VoidReason:          m.VoidReason,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		CustomerID:   p.CustomerID,
		Amount:       p.Amount,
		Status:       p.Status,
		SaleID:       p.SaleID,
		SaleReturnID: p.SaleReturnID,
		Method:       p.Method,
		Reference:    p.Reference,
		PaidAt:       p.PaidAt,
		VoidedAt:     p.VoidedAt,
		VoidReason:   p.VoidReason,
	}
	m.fromTenantRoot(p.TenantAggregateRoot)
	return m
}

// CreditNoteModel is the persistence model for the CreditNote aggregate
type CreditNoteModel struct {
	TenantAggregateModel
	CreditNoteNumber string                   `gorm:"type:varchar(50);not null;index"`
	CustomerID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	SaleID           uuid.UUID                `gorm:"type:uuid;not null"`
	SaleReturnID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status           finance.CreditNoteStatus `gorm:"type:varchar(20);not null"`
	RefundPaymentID  *uuid.UUID               `gorm:"type:uuid"`
	RefundedAt       *time.Time
	AppliedAt        *time.Time
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToDomain converts the persistence model to a domain CreditNote
func (m *CreditNoteModel) ToDomain() *finance.CreditNote {
	return &finance.CreditNote{
		TenantAggregateRoot: m.tenantRoot(),
		CreditNoteNumber:    m.CreditNoteNumber,
		CustomerID:          m.CustomerID,
		SaleID:              m.SaleID,
		SaleReturnID:        m.SaleReturnID,
		Amount:              m.Amount,
		Status:              m.Status,
		RefundPaymentID:     m.RefundPaymentID,
		RefundedAt:          m.RefundedAt,
		AppliedAt:           m.AppliedAt,
	}
}

// CreditNoteModelFromDomain creates a persistence model from a domain CreditNote
func CreditNoteModelFromDomain(n *finance.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{
		CreditNoteNumber: n.CreditNoteNumber,
		CustomerID:       n.CustomerID,
		SaleID:           n.SaleID,
		SaleReturnID:     n.SaleReturnID,
		Amount:           n.Amount,
		Status:           n.Status,
		RefundPaymentID:  n.RefundPaymentID,
		RefundedAt:       n.RefundedAt,
		AppliedAt:        n.AppliedAt,
	}
	m.fromTenantRoot(n.TenantAggregateRoot)
	return m
}

// ExpenseCategoryModel is a tenant-scoped expense category
type ExpenseCategoryModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_expense_category_tenant_name,priority:1"`
	Name     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_expense_category_tenant_name,priority:2"`
}

// TableName returns the table name for GORM
func (ExpenseCategoryModel) TableName() string {
	return "expense_categories"
}

// ToDomain converts the persistence model to a domain ExpenseCategory
func (m *ExpenseCategoryModel) ToDomain() *finance.ExpenseCategory {
	return &finance.ExpenseCategory{
		BaseEntity: m.BaseModel.entity(),
		TenantID:   m.TenantID,
		Name:       m.Name,
	}
}

// ExpenseCategoryModelFromDomain creates a persistence model from a domain ExpenseCategory
func ExpenseCategoryModelFromDomain(c *finance.ExpenseCategory) *ExpenseCategoryModel {
	m := &ExpenseCategoryModel{TenantID: c.TenantID, Name: c.Name}
	m.fromEntity(c.BaseEntity)
	return m
}

// ExpenseModel is a recorded expense
type ExpenseModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID    *uuid.UUID      `gorm:"type:uuid"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description string          `gorm:"type:text"`
	SourceType  string          `gorm:"type:varchar(30);index:idx_expense_source,priority:1"`
	SourceID    *uuid.UUID      `gorm:"type:uuid;index:idx_expense_source,priority:2"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		BaseEntity:  m.BaseModel.entity(),
		TenantID:    m.TenantID,
		CategoryID:  m.CategoryID,
		BranchID:    m.BranchID,
		Amount:      m.Amount,
		Description: m.Description,
		SourceType:  m.SourceType,
		SourceID:    m.SourceID,
	}
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{
		TenantID:    e.TenantID,
		CategoryID:  e.CategoryID,
		BranchID:    e.BranchID,
		Amount:      e.Amount,
		Description: e.Description,
		SourceType:  e.SourceType,
		SourceID:    e.SourceID,
	}
	m.fromEntity(e.BaseEntity)
	return m
}

