package models

import (
	"time"

	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate.
// total_sales, total_payments, pending_balance and balance are the cached
// balance formula and are only written through SaveBalances.
type CustomerModel struct {
	TenantAggregateModel
	Code                  string                 `gorm:"type:varchar(50);not null;index"`
	Name                  string                 `gorm:"type:varchar(200);not null"`
	Status                partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	CreditLimit           decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalSales            decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPayments         decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	PendingBalance        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Balance               decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	BalanceRecalculatedAt *time.Time
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot:   m.tenantRoot(),
		Code:                  m.Code,
		Name:                  m.Name,
		Status:                m.Status,
		CreditLimit:           m.CreditLimit,
		TotalSales:            m.TotalSales,
		TotalPayments:         m.TotalPayments,
		PendingBalance:        m.PendingBalance,
		Balance:               m.Balance,
		BalanceRecalculatedAt: m.BalanceRecalculatedAt,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:                  c.Code,
		Name:                  c.Name,
		Status:                c.Status,
		CreditLimit:           c.CreditLimit,
		TotalSales:            c.TotalSales,
		TotalPayments:         c.TotalPayments,
		PendingBalance:        c.PendingBalance,
		Balance:               c.Balance,
		BalanceRecalculatedAt: c.BalanceRecalculatedAt,
	}
	m.fromTenantRoot(c.TenantAggregateRoot)
	return m
}
