package testutil

import (
	"context"
	"sync"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) SaveBalances(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

// MockLedgerReader is a mock implementation of finance.LedgerReader
type MockLedgerReader struct {
	mock.Mock
}

func (m *MockLedgerReader) LoadTotals(ctx context.Context, tenantID, customerID uuid.UUID) (finance.LedgerTotals, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(finance.LedgerTotals), args.Error(1)
}

func (m *MockLedgerReader) SumClearedCollectionsForSale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, saleID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockSaleRepository) MarkDeleted(ctx context.Context, sale *trade.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

// MockSaleReturnRepository is a mock implementation of trade.SaleReturnRepository
type MockSaleReturnRepository struct {
	mock.Mock
}

func (m *MockSaleReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.SaleReturn, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SaleReturn), args.Error(1)
}

func (m *MockSaleReturnRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter trade.SaleReturnFilter) ([]trade.SaleReturn, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]trade.SaleReturn), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleReturnRepository) ReturnedQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockSaleReturnRepository) Create(ctx context.Context, sr *trade.SaleReturn) error {
	return m.Called(ctx, sr).Error(0)
}

func (m *MockSaleReturnRepository) UpdateStatus(ctx context.Context, sr *trade.SaleReturn) error {
	return m.Called(ctx, sr).Error(0)
}

func (m *MockSaleReturnRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockSaleReturnRepository) GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockPaymentRepository is a mock implementation of finance.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindBySaleReturn(ctx context.Context, tenantID, saleReturnID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, saleReturnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

// MockCreditNoteRepository is a mock implementation of finance.CreditNoteRepository
type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CreditNote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindBySaleReturn(ctx context.Context, tenantID, saleReturnID uuid.UUID) (*finance.CreditNote, error) {
	args := m.Called(ctx, tenantID, saleReturnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, note *finance.CreditNote) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockCreditNoteRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockExpenseRepository is a mock implementation of finance.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindOrCreateCategory(ctx context.Context, tenantID uuid.UUID, name string) (*finance.ExpenseCategory, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.ExpenseCategory), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *MockExpenseRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]finance.Expense, error) {
	args := m.Called(ctx, tenantID, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Expense), args.Error(1)
}

// MockProductRepository is a mock implementation of inventory.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, delta decimal.Decimal) error {
	return m.Called(ctx, tenantID, productID, delta).Error(0)
}

// MockInventoryTransactionRepository is a mock implementation of inventory.InventoryTransactionRepository
type MockInventoryTransactionRepository struct {
	mock.Mock
}

func (m *MockInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockInventoryTransactionRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) ([]inventory.InventoryTransaction, error) {
	args := m.Called(ctx, tenantID, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryTransaction), args.Error(1)
}

// MockDamageInventoryRepository is a mock implementation of inventory.DamageInventoryRepository
type MockDamageInventoryRepository struct {
	mock.Mock
}

func (m *MockDamageInventoryRepository) Upsert(ctx context.Context, tenantID, productID, branchID uuid.UUID, quantity decimal.Decimal) error {
	return m.Called(ctx, tenantID, productID, branchID, quantity).Error(0)
}

func (m *MockDamageInventoryRepository) Find(ctx context.Context, tenantID, productID, branchID uuid.UUID) (*inventory.DamageInventory, error) {
	args := m.Called(ctx, tenantID, productID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.DamageInventory), args.Error(1)
}

// MockDamageCategoryRepository is a mock implementation of inventory.DamageCategoryRepository
type MockDamageCategoryRepository struct {
	mock.Mock
}

func (m *MockDamageCategoryRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*inventory.DamageCategory, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*inventory.DamageCategory), args.Error(1)
}

func (m *MockDamageCategoryRepository) Save(ctx context.Context, category *inventory.DamageCategory) error {
	return m.Called(ctx, category).Error(0)
}

// MockAuditLogRepository is a mock implementation of shared.AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *shared.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditLogRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]shared.AuditEntry, error) {
	args := m.Called(ctx, tenantID, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shared.AuditEntry), args.Error(1)
}

// MockRepositories bundles one mock per repository and implements uow.Repositories
type MockRepositories struct {
	CustomerRepo       *MockCustomerRepository
	LedgerRepo         *MockLedgerReader
	SaleRepo           *MockSaleRepository
	SaleReturnRepo     *MockSaleReturnRepository
	PaymentRepo        *MockPaymentRepository
	CreditNoteRepo     *MockCreditNoteRepository
	ExpenseRepo        *MockExpenseRepository
	ProductRepo        *MockProductRepository
	InvTxRepo          *MockInventoryTransactionRepository
	DamageRepo         *MockDamageInventoryRepository
	DamageCategoryRepo *MockDamageCategoryRepository
	AuditRepo          *MockAuditLogRepository
}

// NewMockRepositories creates a bundle of fresh mocks
func NewMockRepositories() *MockRepositories {
	return &MockRepositories{
		CustomerRepo:       new(MockCustomerRepository),
		LedgerRepo:         new(MockLedgerReader),
		SaleRepo:           new(MockSaleRepository),
		SaleReturnRepo:     new(MockSaleReturnRepository),
		PaymentRepo:        new(MockPaymentRepository),
		CreditNoteRepo:     new(MockCreditNoteRepository),
		ExpenseRepo:        new(MockExpenseRepository),
		ProductRepo:        new(MockProductRepository),
		InvTxRepo:          new(MockInventoryTransactionRepository),
		DamageRepo:         new(MockDamageInventoryRepository),
		DamageCategoryRepo: new(MockDamageCategoryRepository),
		AuditRepo:          new(MockAuditLogRepository),
	}
}

func (r *MockRepositories) Customers() partner.CustomerRepository { return r.CustomerRepo }
func (r *MockRepositories) Ledger() finance.LedgerReader          { return r.LedgerRepo }
func (r *MockRepositories) Sales() trade.SaleRepository           { return r.SaleRepo }
func (r *MockRepositories) SaleReturns() trade.SaleReturnRepository {
	return r.SaleReturnRepo
}
func (r *MockRepositories) Payments() finance.PaymentRepository       { return r.PaymentRepo }
func (r *MockRepositories) CreditNotes() finance.CreditNoteRepository { return r.CreditNoteRepo }
func (r *MockRepositories) Expenses() finance.ExpenseRepository       { return r.ExpenseRepo }
func (r *MockRepositories) Products() inventory.ProductRepository     { return r.ProductRepo }
func (r *MockRepositories) InventoryTransactions() inventory.InventoryTransactionRepository {
	return r.InvTxRepo
}
func (r *MockRepositories) DamageInventory() inventory.DamageInventoryRepository {
	return r.DamageRepo
}
func (r *MockRepositories) DamageCategories() inventory.DamageCategoryRepository {
	return r.DamageCategoryRepo
}
func (r *MockRepositories) AuditLogs() shared.AuditLogRepository { return r.AuditRepo }

// AssertExpectations asserts expectations on every mock in the bundle
func (r *MockRepositories) AssertExpectations(t mock.TestingT) {
	r.CustomerRepo.AssertExpectations(t)
	r.LedgerRepo.AssertExpectations(t)
	r.SaleRepo.AssertExpectations(t)
	r.SaleReturnRepo.AssertExpectations(t)
	r.PaymentRepo.AssertExpectations(t)
	r.CreditNoteRepo.AssertExpectations(t)
	r.ExpenseRepo.AssertExpectations(t)
	r.ProductRepo.AssertExpectations(t)
	r.InvTxRepo.AssertExpectations(t)
	r.DamageRepo.AssertExpectations(t)
	r.DamageCategoryRepo.AssertExpectations(t)
	r.AuditRepo.AssertExpectations(t)
}

// MockTransactionScope runs fn directly against the mock bundle.
// Commits counts successful executions; Rollbacks counts failed ones.
type MockTransactionScope struct {
	Repos     *MockRepositories
	Commits   int
	Rollbacks int
	mu        sync.Mutex
}

// NewMockTransactionScope creates a scope backed by fresh mocks
func NewMockTransactionScope() *MockTransactionScope {
	return &MockTransactionScope{Repos: NewMockRepositories()}
}

// Execute calls fn with the mock repositories
func (s *MockTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	err := ctx.Err()
	if err == nil {
		err = fn(s.Repos)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.Rollbacks++
		return err
	}
	s.Commits++
	return nil
}

var (
	_ uow.Repositories     = (*MockRepositories)(nil)
	_ uow.TransactionScope = (*MockTransactionScope)(nil)
)
