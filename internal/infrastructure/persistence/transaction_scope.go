package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
// Every repository handed to fn is bound to the same *gorm.DB transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error or ctx is cancelled, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(NewRepositories(tx)); err != nil {
			return err
		}
		return ctx.Err()
	})
}

// gormRepositories binds every ledger repository to one *gorm.DB
type gormRepositories struct {
	tx *gorm.DB
}

// NewRepositories returns the repository bundle bound to db. Outside a
// transaction scope each call runs in its own implicit transaction.
func NewRepositories(db *gorm.DB) uow.Repositories {
	return &gormRepositories{tx: db}
}

func (r *gormRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormRepositories) Ledger() finance.LedgerReader {
	return NewGormLedgerReader(r.tx)
}

func (r *gormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormRepositories) SaleReturns() trade.SaleReturnRepository {
	return NewGormSaleReturnRepository(r.tx)
}

func (r *gormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormRepositories) CreditNotes() finance.CreditNoteRepository {
	return NewGormCreditNoteRepository(r.tx)
}

func (r *gormRepositories) Expenses() finance.ExpenseRepository {
	return NewGormExpenseRepository(r.tx)
}

func (r *gormRepositories) Products() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormRepositories) InventoryTransactions() inventory.InventoryTransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

func (r *gormRepositories) DamageInventory() inventory.DamageInventoryRepository {
	return NewGormDamageInventoryRepository(r.tx)
}

func (r *gormRepositories) DamageCategories() inventory.DamageCategoryRepository {
	return NewGormDamageCategoryRepository(r.tx)
}

func (r *gormRepositories) AuditLogs() shared.AuditLogRepository {
	return NewGormAuditLogRepository(r.tx)
}

// Ensure GormTransactionScope implements uow.TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure the repositories implement their domain interfaces
var (
	_ uow.Repositories                         = (*gormRepositories)(nil)
	_ partner.CustomerRepository               = (*GormCustomerRepository)(nil)
	_ finance.LedgerReader                     = (*GormLedgerReader)(nil)
	_ trade.SaleRepository                     = (*GormSaleRepository)(nil)
	_ trade.SaleReturnRepository               = (*GormSaleReturnRepository)(nil)
	_ finance.PaymentRepository                = (*GormPaymentRepository)(nil)
	_ finance.CreditNoteRepository             = (*GormCreditNoteRepository)(nil)
	_ finance.ExpenseRepository                = (*GormExpenseRepository)(nil)
	_ inventory.ProductRepository              = (*GormProductRepository)(nil)
	_ inventory.InventoryTransactionRepository = (*GormInventoryTransactionRepository)(nil)
	_ inventory.DamageInventoryRepository      = (*GormDamageInventoryRepository)(nil)
	_ inventory.DamageCategoryRepository       = (*GormDamageCategoryRepository)(nil)
	_ shared.AuditLogRepository                = (*GormAuditLogRepository)(nil)
)
