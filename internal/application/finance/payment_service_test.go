package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/reconciler/internal/application/balance"
	"github.com/erp/reconciler/internal/domain/finance"
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

type paymentFixture struct {
	tenantID uuid.UUID
	customer *partner.Customer
	scope    *testutil.MockTransactionScope
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	tenantID := uuid.New()
	customer, err := partner.NewCustomer(tenantID, "C1", "Customer One")
	require.NoError(t, err)
	return &paymentFixture{
		tenantID: tenantID,
		customer: customer,
		scope:    testutil.NewMockTransactionScope(),
	}
}

func (f *paymentFixture) expectRecalculation(totals finance.LedgerTotals) {
	repos := f.scope.Repos
	repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.customer.ID).Return(f.customer, nil)
	repos.LedgerRepo.On("LoadTotals", mock.Anything, f.tenantID, f.customer.ID).Return(totals, nil)
	repos.CustomerRepo.On("SaveBalances", mock.Anything, f.customer).Return(nil)
	repos.AuditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
}

// approvedReturn builds an approved return worth 210 against a 1000 sale
func approvedReturn(t *testing.T, tenantID, customerID uuid.UUID) *trade.SaleReturn {
	t.Helper()
	sale, err := trade.NewSale(tenantID, customerID, uuid.New(), "INV-1", decimal.NewFromInt(1000), []trade.SaleItemInput{
		{ProductID: uuid.New(), ProductName: "Chair", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	sr, err := trade.NewReturnPlanner().Plan(sale, nil, nil, trade.ReturnRequest{
		ReturnNumber: "SR-1",
		RestoreStock: true,
		Lines:        []trade.ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	return sr
}

func TestPaymentService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("collection lowers the balance", func(t *testing.T) {
		f := newPaymentFixture(t)
		svc := NewPaymentService(f.scope, balance.NewService(f.scope), nil, nil)
		f.scope.Repos.PaymentRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *finance.Payment) bool {
			return !p.IsRefund() && p.IsCleared()
		})).Return(nil)
		f.expectRecalculation(finance.LedgerTotals{
			TotalSales:    decimal.NewFromInt(1000),
			TotalPayments: decimal.NewFromInt(1000),
		})

		resp, err := svc.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
			CustomerID: f.customer.ID,
			Amount:     decimal.NewFromInt(1000),
		})
		require.NoError(t, err)
		assert.Equal(t, "CLEARED", resp.Status)
		assert.False(t, resp.IsRefund)
		assert.True(t, f.customer.PendingBalance.IsZero())
		f.scope.Repos.AssertExpectations(t)
	})

	t.Run("refund adds back to the balance", func(t *testing.T) {
		f := newPaymentFixture(t)
		svc := NewPaymentService(f.scope, balance.NewService(f.scope), nil, nil)
		sr := approvedReturn(t, f.tenantID, f.customer.ID)
		repos := f.scope.Repos
		repos.SaleReturnRepo.On("FindByID", mock.Anything, f.tenantID, sr.ID).Return(sr, nil)
		repos.PaymentRepo.On("FindBySaleReturn", mock.Anything, f.tenantID, sr.ID).Return([]finance.Payment{}, nil)
		repos.PaymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.customer.PendingBalance = decimal.NewFromInt(-210)
		f.expectRecalculation(finance.LedgerTotals{
			TotalSales:    decimal.NewFromInt(1000),
			TotalPayments: decimal.NewFromInt(1000),
			TotalReturns:  sr.GrandTotal,
			RefundsPaid:   sr.GrandTotal,
		})

		resp, err := svc.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
			CustomerID:   f.customer.ID,
			Amount:       sr.GrandTotal,
			SaleReturnID: &sr.ID,
		})
		require.NoError(t, err)
		assert.True(t, resp.IsRefund)
		assert.True(t, f.customer.PendingBalance.IsZero(), "got %s", f.customer.PendingBalance)
	})

	refundErrors := []struct {
		name    string
		mutate  func(sr *trade.SaleReturn)
		prior   []finance.Payment
		amount  decimal.Decimal
		wantErr error
	}{
		{
			name:    "return of another customer",
			mutate:  func(sr *trade.SaleReturn) { sr.CustomerID = uuid.New() },
			amount:  decimal.NewFromInt(10),
			wantErr: shared.ErrInvalidInput,
		},
		{
			name: "pending return",
			mutate: func(sr *trade.SaleReturn) {
				sr.Status = trade.ReturnStatusPending
			},
			amount:  decimal.NewFromInt(10),
			wantErr: shared.ErrInvalidState,
		},
		{
			name:    "refund above return total",
			amount:  decimal.NewFromInt(211),
			wantErr: shared.ErrInvalidInput,
		},
		{
			name:    "refund above what is left after prior refunds",
			prior:   []finance.Payment{{Amount: decimal.NewFromInt(200), Status: finance.PaymentStatusCleared}},
			amount:  decimal.NewFromInt(11),
			wantErr: shared.ErrInvalidInput,
		},
	}
	for _, tt := range refundErrors {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			svc := NewPaymentService(f.scope, balance.NewService(f.scope), nil, nil)
			sr := approvedReturn(t, f.tenantID, f.customer.ID)
			if tt.mutate != nil {
				tt.mutate(sr)
			}
			prior := tt.prior
			if prior == nil {
				prior = []finance.Payment{}
			}
			repos := f.scope.Repos
			repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.customer.ID).Return(f.customer, nil)
			repos.SaleReturnRepo.On("FindByID", mock.Anything, f.tenantID, sr.ID).Return(sr, nil)
			repos.PaymentRepo.On("FindBySaleReturn", mock.Anything, f.tenantID, sr.ID).Return(prior, nil)

			_, err := svc.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
				CustomerID:   f.customer.ID,
				Amount:       tt.amount,
				SaleReturnID: &sr.ID,
			})
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			repos.PaymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			assert.Equal(t, 1, f.scope.Rollbacks)
		})
	}

	t.Run("refund must be cleared", func(t *testing.T) {
		f := newPaymentFixture(t)
		svc := NewPaymentService(f.scope, balance.NewService(f.scope), nil, nil)
		returnID := uuid.New()

		_, err := svc.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
			CustomerID: f.customer.ID, Amount: decimal.NewFromInt(5), Status: "PENDING", SaleReturnID: &returnID,
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("sale of another customer", func(t *testing.T) {
		f := newPaymentFixture(t)
		svc := NewPaymentService(f.scope, balance.NewService(f.scope), nil, nil)
		sale, err := trade.NewSale(f.tenantID, uuid.New(), uuid.New(), "INV-9", decimal.NewFromInt(50), []trade.SaleItemInput{
			{ProductID: uuid.New(), ProductName: "Pen", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(10)},
		})
		require.NoError(t, err)
		f.scope.Repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.customer.ID).Return(f.customer, nil)
		f.scope.Repos.SaleRepo.On("FindByID", mock.Anything, f.tenantID, sale.ID).Return(sale, nil)

		_, err = svc.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
			CustomerID: f.customer.ID, Amount: decimal.NewFromInt(50), SaleID: &sale.ID,
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestPaymentService_VoidPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("voided collection drops out of the balance", func(t *testing.T) {
		f := newPaymentFixture(t)
		svc := NewPaymentService(f.scope, balance.NewService(f.scope), nil, nil)
		payment, err := finance.NewPayment(f.tenantID, f.customer.ID, decimal.NewFromInt(400), finance.PaymentStatusCleared)
		require.NoError(t, err)
		f.scope.Repos.PaymentRepo.On("FindByID", mock.Anything, f.tenantID, payment.ID).Return(payment, nil)
		f.scope.Repos.PaymentRepo.On("Save", mock.Anything, payment).Return(nil)
		f.expectRecalculation(finance.LedgerTotals{TotalSales: decimal.NewFromInt(1000)})

		resp, err := svc.VoidPayment(ctx, f.tenantID, payment.ID, uuid.New(), VoidPaymentRequest{Reason: "bounced cheque"})
		require.NoError(t, err)
		assert.Equal(t, "VOIDED", resp.Status)
		assert.Equal(t, "bounced cheque", resp.VoidReason)
		assert.True(t, f.customer.PendingBalance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("voiding twice", func(t *testing.T) {
		f := newPaymentFixture(t)
		svc := NewPaymentService(f.scope, balance.NewService(f.scope), nil, nil)
		payment, err := finance.NewPayment(f.tenantID, f.customer.ID, decimal.NewFromInt(10), finance.PaymentStatusCleared)
		require.NoError(t, err)
		require.NoError(t, payment.Void("first"))
		f.scope.Repos.PaymentRepo.On("FindByID", mock.Anything, f.tenantID, payment.ID).Return(payment, nil)

		_, err = svc.VoidPayment(ctx, f.tenantID, payment.ID, uuid.New(), VoidPaymentRequest{Reason: "again"})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}
