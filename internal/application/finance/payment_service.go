package finance

import (
	"context"
	"fmt"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const auditEntityPayment = "payment"

// PaymentService records and voids customer payments. Both paths recalculate
// the customer balance inside the mutation's transaction.
type PaymentService struct {
	scope     uow.TransactionScope
	balances  uow.BalanceRecalculator
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope uow.TransactionScope, balances uow.BalanceRecalculator, publisher shared.EventPublisher, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:     scope,
		balances:  balances,
		publisher: publisher,
		logger:    logger,
	}
}

// RecordPayment records a collection, or a refund when SaleReturnID is set
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	status := finance.PaymentStatusCleared
	if req.Status != "" {
		status = finance.PaymentStatus(req.Status)
	}

	var (
		payment *finance.Payment
		err     error
	)
	if req.SaleReturnID != nil {
		if status != finance.PaymentStatusCleared {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Refunds are recorded as cleared payments")
		}
		payment, err = finance.NewRefundPayment(tenantID, req.CustomerID, *req.SaleReturnID, req.Amount)
	} else {
		payment, err = finance.NewPayment(tenantID, req.CustomerID, req.Amount, status)
	}
	if err != nil {
		return nil, err
	}
	if req.SaleID != nil {
		payment.LinkSale(*req.SaleID)
	}
	payment.Method = req.Method
	payment.Reference = req.Reference
	payment.SetCreatedBy(req.CreatedBy)

	var events uow.EventCollector
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		if _, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, payment.CustomerID); err != nil {
			return err
		}
		if err := validateSaleLink(ctx, repos, payment); err != nil {
			return err
		}
		if payment.IsRefund() {
			if err := validateRefund(ctx, repos, payment); err != nil {
				return err
			}
		}

		if err := repos.Payments().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		customer, err := s.balances.RecalculateInTx(ctx, repos, tenantID, payment.CustomerID)
		if err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntityPayment, payment.ID, shared.AuditActionCreate, req.CreatedBy, map[string]any{
			"amount":         payment.Amount,
			"status":         payment.Status,
			"sale_return_id": payment.SaleReturnID,
		})
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		events.Collect(payment, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("customer_id", payment.CustomerID.String()),
		zap.Stringer("payment", payment),
	)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// VoidPayment voids a payment so it drops out of the balance formula
func (s *PaymentService) VoidPayment(ctx context.Context, tenantID, paymentID, actorID uuid.UUID, req VoidPaymentRequest) (*PaymentResponse, error) {
	var (
		payment *finance.Payment
		events  uow.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		var err error
		payment, err = repos.Payments().FindByID(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if err := payment.Void(req.Reason); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		customer, err := s.balances.RecalculateInTx(ctx, repos, tenantID, payment.CustomerID)
		if err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntityPayment, payment.ID, shared.AuditActionVoid, actorID, map[string]any{
			"reason": req.Reason,
		})
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		events.Collect(payment, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("payment voided",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", paymentID.String()),
	)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// validateSaleLink checks that a linked sale belongs to the payment's customer
func validateSaleLink(ctx context.Context, repos uow.Repositories, payment *finance.Payment) error {
	if payment.SaleID == nil {
		return nil
	}
	sale, err := repos.Sales().FindByID(ctx, payment.TenantID, *payment.SaleID)
	if err != nil {
		return err
	}
	if sale.IsDeleted {
		return shared.NotFoundf("Sale %s not found", sale.ID)
	}
	if sale.CustomerID != payment.CustomerID {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Sale %s belongs to another customer", sale.InvoiceNumber)
	}
	return nil
}

// validateRefund checks a refund against its return: same tenant and customer,
// approved, and not paying out more than the return is worth across all
// cleared refunds.
func validateRefund(ctx context.Context, repos uow.Repositories, payment *finance.Payment) error {
	sr, err := repos.SaleReturns().FindByID(ctx, payment.TenantID, *payment.SaleReturnID)
	if err != nil {
		return err
	}
	if sr.CustomerID != payment.CustomerID {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Return %s belongs to another customer", sr.ReturnNumber)
	}
	if !sr.IsApproved() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot refund return %s in %s status", sr.ReturnNumber, sr.Status)
	}

	existing, err := repos.Payments().FindBySaleReturn(ctx, payment.TenantID, sr.ID)
	if err != nil {
		return fmt.Errorf("failed to load refunds: %w", err)
	}
	refunded := decimal.Zero
	for i := range existing {
		if existing[i].ID != payment.ID && existing[i].IsCleared() {
			refunded = refunded.Add(existing[i].Amount)
		}
	}
	refundable := sr.GrandTotal.Sub(refunded)
	if payment.Amount.GreaterThan(refundable) {
		return shared.NewDomainErrorf(shared.CodeInvalidInput,
			"Refund %s exceeds refundable amount %s for return %s", payment.Amount, refundable, sr.ReturnNumber)
	}
	return nil
}
