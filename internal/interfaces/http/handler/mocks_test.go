package handler

import (
	"context"

	"github.com/erp/reconciler/internal/application/balance"
	financeapp "github.com/erp/reconciler/internal/application/finance"
	tradeapp "github.com/erp/reconciler/internal/application/trade"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func init() {
	middleware.SetupValidator()
}

type mockSaleReturnService struct {
	mock.Mock
}

func (m *mockSaleReturnService) CreateSaleReturn(ctx context.Context, tenantID uuid.UUID, req tradeapp.CreateSaleReturnRequest) (*tradeapp.SaleReturnResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleReturnResponse), args.Error(1)
}

func (m *mockSaleReturnService) ApproveSaleReturn(ctx context.Context, tenantID, returnID, approverID uuid.UUID, req tradeapp.ApproveSaleReturnRequest) (*tradeapp.SaleReturnResponse, error) {
	args := m.Called(ctx, tenantID, returnID, approverID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleReturnResponse), args.Error(1)
}

func (m *mockSaleReturnService) RejectSaleReturn(ctx context.Context, tenantID, returnID, rejecterID uuid.UUID, req tradeapp.RejectSaleReturnRequest) (*tradeapp.SaleReturnResponse, error) {
	args := m.Called(ctx, tenantID, returnID, rejecterID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleReturnResponse), args.Error(1)
}

func (m *mockSaleReturnService) DeleteSaleReturn(ctx context.Context, tenantID, returnID, actorID uuid.UUID) error {
	return m.Called(ctx, tenantID, returnID, actorID).Error(0)
}

func (m *mockSaleReturnService) GetSaleReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*tradeapp.SaleReturnResponse, error) {
	args := m.Called(ctx, tenantID, returnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleReturnResponse), args.Error(1)
}

func (m *mockSaleReturnService) ListSaleReturns(ctx context.Context, tenantID uuid.UUID, filter tradeapp.SaleReturnListFilter) (shared.Paginated[tradeapp.SaleReturnListItemResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[tradeapp.SaleReturnListItemResponse]), args.Error(1)
}

func (m *mockSaleReturnService) GetReturnableQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (*tradeapp.ReturnableResponse, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.ReturnableResponse), args.Error(1)
}

type mockSaleService struct {
	mock.Mock
}

func (m *mockSaleService) CreateSale(ctx context.Context, tenantID uuid.UUID, req tradeapp.CreateSaleRequest) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *mockSaleService) SoftDeleteSale(ctx context.Context, tenantID, saleID, actorID uuid.UUID) error {
	return m.Called(ctx, tenantID, saleID, actorID).Error(0)
}

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req financeapp.RecordPaymentRequest) (*financeapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.PaymentResponse), args.Error(1)
}

func (m *mockPaymentService) VoidPayment(ctx context.Context, tenantID, paymentID, actorID uuid.UUID, req financeapp.VoidPaymentRequest) (*financeapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.PaymentResponse), args.Error(1)
}

type mockCreditNoteService struct {
	mock.Mock
}

func (m *mockCreditNoteService) RefundCreditNote(ctx context.Context, tenantID, creditNoteID, actorID uuid.UUID) (*financeapp.CreditNoteResponse, error) {
	args := m.Called(ctx, tenantID, creditNoteID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.CreditNoteResponse), args.Error(1)
}

type mockBalanceRecalculator struct {
	mock.Mock
}

func (m *mockBalanceRecalculator) RecalculateCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) (*balance.CustomerBalanceDTO, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.CustomerBalanceDTO), args.Error(1)
}

func (m *mockBalanceRecalculator) RecalculateAllCustomerBalances(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type mockDriftChecker struct {
	mock.Mock
}

func (m *mockDriftChecker) CheckCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*balance.DriftResult, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DriftResult), args.Error(1)
}

func (m *mockDriftChecker) ValidateTenant(ctx context.Context, tenantID uuid.UUID) (*balance.DriftReport, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DriftReport), args.Error(1)
}

func (m *mockDriftChecker) RepairTenant(ctx context.Context, tenantID uuid.UUID) (*balance.DriftReport, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.DriftReport), args.Error(1)
}
