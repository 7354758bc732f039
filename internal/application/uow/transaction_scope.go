// Package uow defines the transaction scope shared by every ledger-mutating service.
package uow

import (
	"context"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
)

// TransactionScope executes a function within a database transaction.
// Any error returned by fn, or a cancelled context, rolls back every write made through repos.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to all ledger repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type Repositories interface {
	Customers() partner.CustomerRepository
	Ledger() finance.LedgerReader
	Sales() trade.SaleRepository
	SaleReturns() trade.SaleReturnRepository
	Payments() finance.PaymentRepository
	CreditNotes() finance.CreditNoteRepository
	Expenses() finance.ExpenseRepository
	Products() inventory.ProductRepository
	InventoryTransactions() inventory.InventoryTransactionRepository
	DamageInventory() inventory.DamageInventoryRepository
	DamageCategories() inventory.DamageCategoryRepository
	AuditLogs() shared.AuditLogRepository
}

// BalanceRecalculator is the hook every ledger mutation calls before its
// transaction commits. The returned customer carries the events to publish.
type BalanceRecalculator interface {
	RecalculateInTx(ctx context.Context, repos Repositories, tenantID, customerID uuid.UUID) (*partner.Customer, error)
}
