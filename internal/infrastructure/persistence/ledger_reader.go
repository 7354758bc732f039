package persistence

import (
	"context"
	"fmt"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ledgerTotalsQuery computes the four balance aggregates in one round trip.
// Every subquery filters by tenant as well as customer.
const ledgerTotalsQuery = `
SELECT
	(SELECT COALESCE(SUM(grand_total), 0) FROM sales
		WHERE tenant_id = @tenant AND customer_id = @customer AND is_deleted = @deleted) AS total_sales,
	(SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE tenant_id = @tenant AND customer_id = @customer AND status = @cleared AND sale_return_id IS NULL) AS total_payments,
	(SELECT COALESCE(SUM(grand_total), 0) FROM sale_returns
		WHERE tenant_id = @tenant AND customer_id = @customer AND status = @approved) AS total_returns,
	(SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE tenant_id = @tenant AND customer_id = @customer AND status = @cleared AND sale_return_id IS NOT NULL) AS refunds_paid`

type ledgerTotalsRow struct {
	TotalSales    decimal.Decimal `gorm:"column:total_sales"`
	TotalPayments decimal.Decimal `gorm:"column:total_payments"`
	TotalReturns  decimal.Decimal `gorm:"column:total_returns"`
	RefundsPaid   decimal.Decimal `gorm:"column:refunds_paid"`
}

// GormLedgerReader implements finance.LedgerReader with aggregate SQL
type GormLedgerReader struct {
	db *gorm.DB
}

// NewGormLedgerReader creates a new GormLedgerReader
func NewGormLedgerReader(db *gorm.DB) *GormLedgerReader {
	return &GormLedgerReader{db: db}
}

// LoadTotals sums the customer's ledger primitives
func (r *GormLedgerReader) LoadTotals(ctx context.Context, tenantID, customerID uuid.UUID) (finance.LedgerTotals, error) {
	var row ledgerTotalsRow
	err := r.db.WithContext(ctx).Raw(ledgerTotalsQuery, map[string]any{
		"tenant":   tenantID,
		"customer": customerID,
		"deleted":  false,
		"cleared":  finance.PaymentStatusCleared,
		"approved": trade.ReturnStatusApproved,
	}).Scan(&row).Error
	if err != nil {
		return finance.LedgerTotals{}, fmt.Errorf("failed to load ledger totals: %w", err)
	}
	return finance.LedgerTotals{
		TotalSales:    row.TotalSales,
		TotalPayments: row.TotalPayments,
		TotalReturns:  row.TotalReturns,
		RefundsPaid:   row.RefundsPaid,
	}, nil
}

// SumClearedCollectionsForSale sums CLEARED non-refund payments linked to a sale
func (r *GormLedgerReader) SumClearedCollectionsForSale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total FROM payments
		WHERE tenant_id = ? AND sale_id = ? AND status = ? AND sale_return_id IS NULL`,
		tenantID, saleID, finance.PaymentStatusCleared,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum collections: %w", err)
	}
	return row.Total, nil
}
