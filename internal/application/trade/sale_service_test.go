package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/reconciler/internal/application/balance"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/erp/reconciler/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSaleService_CreateSale(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("records sale, deducts stock and raises the balance", func(t *testing.T) {
		scope := testutil.NewMockTransactionScope()
		publisher := &capturePublisher{}
		svc := NewSaleService(scope, balance.NewService(scope), publisher, nil)
		repos := scope.Repos

		customer, err := partner.NewCustomer(tenantID, "C1", "Customer One")
		require.NoError(t, err)
		productID := uuid.New()

		repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		repos.SaleRepo.On("Create", mock.Anything, mock.AnythingOfType("*trade.Sale")).Return(nil)
		repos.ProductRepo.On("AdjustStock", mock.Anything, tenantID, productID, decEq("-24")).Return(nil)
		repos.InvTxRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *inventory.InventoryTransaction) bool {
			return tx.Type == inventory.TransactionTypeSaleOut && tx.SourceType == inventory.SourceTypeSale
		})).Return(nil)
		repos.LedgerRepo.On("LoadTotals", mock.Anything, tenantID, customer.ID).
			Return(finance.LedgerTotals{TotalSales: decimal.NewFromInt(480)}, nil)
		repos.CustomerRepo.On("SaveBalances", mock.Anything, customer).Return(nil)
		repos.AuditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.CreateSale(ctx, tenantID, CreateSaleRequest{
			CustomerID:    customer.ID,
			BranchID:      uuid.New(),
			InvoiceNumber: "INV-100",
			GrandTotal:    decimal.NewFromInt(480),
			Items: []CreateSaleItemRequest{{
				ProductID: productID, ProductName: "Box of bolts",
				Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(240), ConversionToBase: decimal.NewFromInt(12),
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, "INV-100", resp.InvoiceNumber)
		assert.True(t, customer.PendingBalance.Equal(decimal.NewFromInt(480)))
		assert.Equal(t, []string{trade.EventTypeSaleCreated, partner.EventTypeCustomerBalanceRecalculated}, publisher.types())
		repos.AssertExpectations(t)
	})

	t.Run("invalid input never opens a transaction", func(t *testing.T) {
		scope := testutil.NewMockTransactionScope()
		svc := NewSaleService(scope, balance.NewService(scope), nil, nil)

		_, err := svc.CreateSale(ctx, tenantID, CreateSaleRequest{CustomerID: uuid.New(), InvoiceNumber: "INV-1"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Zero(t, scope.Commits+scope.Rollbacks)
	})

	t.Run("unknown customer", func(t *testing.T) {
		scope := testutil.NewMockTransactionScope()
		svc := NewSaleService(scope, balance.NewService(scope), nil, nil)
		customerID := uuid.New()
		scope.Repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, tenantID, customerID).Return(nil, shared.ErrNotFound)

		_, err := svc.CreateSale(ctx, tenantID, CreateSaleRequest{
			CustomerID: customerID, BranchID: uuid.New(), InvoiceNumber: "INV-2", GrandTotal: decimal.NewFromInt(10),
			Items: []CreateSaleItemRequest{{ProductID: uuid.New(), ProductName: "X", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		scope.Repos.SaleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSaleService_SoftDeleteSale(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	customer, err := partner.NewCustomer(tenantID, "C1", "Customer One")
	require.NoError(t, err)
	customer.PendingBalance = decimal.NewFromInt(300)

	sale, err := trade.NewSale(tenantID, customer.ID, uuid.New(), "INV-7", decimal.NewFromInt(300), []trade.SaleItemInput{
		{ProductID: uuid.New(), ProductName: "Lamp", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	sale.ClearDomainEvents()

	t.Run("deleted sale drops out of the balance", func(t *testing.T) {
		scope := testutil.NewMockTransactionScope()
		svc := NewSaleService(scope, balance.NewService(scope), nil, nil)
		repos := scope.Repos
		repos.SaleRepo.On("FindByID", mock.Anything, tenantID, sale.ID).Return(sale, nil)
		repos.SaleRepo.On("MarkDeleted", mock.Anything, sale).Return(nil)
		repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		repos.LedgerRepo.On("LoadTotals", mock.Anything, tenantID, customer.ID).Return(finance.LedgerTotals{}, nil)
		repos.CustomerRepo.On("SaveBalances", mock.Anything, customer).Return(nil)
		repos.AuditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, svc.SoftDeleteSale(ctx, tenantID, sale.ID, uuid.New()))
		assert.True(t, sale.IsDeleted)
		assert.True(t, customer.PendingBalance.IsZero())
	})

	t.Run("deleting twice is an invalid state", func(t *testing.T) {
		scope := testutil.NewMockTransactionScope()
		svc := NewSaleService(scope, balance.NewService(scope), nil, nil)
		scope.Repos.SaleRepo.On("FindByID", mock.Anything, tenantID, sale.ID).Return(sale, nil)

		err := svc.SoftDeleteSale(ctx, tenantID, sale.ID, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}
