package finance

import (
	"context"
	"fmt"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const auditEntityCreditNote = "credit_note"

// CreditNoteService pays out credit notes issued for returns
type CreditNoteService struct {
	scope     uow.TransactionScope
	balances  uow.BalanceRecalculator
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(scope uow.TransactionScope, balances uow.BalanceRecalculator, publisher shared.EventPublisher, logger *zap.Logger) *CreditNoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditNoteService{
		scope:     scope,
		balances:  balances,
		publisher: publisher,
		logger:    logger,
	}
}

// RefundCreditNote pays an unused credit note back to the customer. It records
// a CLEARED refund payment linked to the note's return, which adds the amount
// back to the customer's balance.
func (s *CreditNoteService) RefundCreditNote(ctx context.Context, tenantID, creditNoteID, actorID uuid.UUID) (*CreditNoteResponse, error) {
	var (
		note    *finance.CreditNote
		payment *finance.Payment
		events  uow.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		var err error
		note, err = repos.CreditNotes().FindByID(ctx, tenantID, creditNoteID)
		if err != nil {
			return err
		}
		if note.Status.IsTerminal() {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot refund credit note in %s status", note.Status)
		}

		payment, err = finance.NewRefundPayment(tenantID, note.CustomerID, note.SaleReturnID, note.Amount)
		if err != nil {
			return err
		}
		payment.LinkSale(note.SaleID)
		payment.Method = "credit_note"
		payment.Reference = note.CreditNoteNumber
		payment.SetCreatedBy(actorID)
		if err := validateRefund(ctx, repos, payment); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save refund payment: %w", err)
		}

		if err := note.MarkRefunded(payment.ID); err != nil {
			return err
		}
		if err := repos.CreditNotes().Save(ctx, note); err != nil {
			return fmt.Errorf("failed to save credit note: %w", err)
		}

		customer, err := s.balances.RecalculateInTx(ctx, repos, tenantID, note.CustomerID)
		if err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntityCreditNote, note.ID, shared.AuditActionRefund, actorID, map[string]any{
			"payment_id": payment.ID,
			"amount":     note.Amount,
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
	s.logger.Info("credit note refunded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("credit_note_id", note.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", note.Amount.String()),
	)

	response := ToCreditNoteResponse(note)
	paymentResponse := ToPaymentResponse(payment)
	response.RefundPayment = &paymentResponse
	return &response, nil
}
