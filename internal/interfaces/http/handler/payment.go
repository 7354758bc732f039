package handler

import (
	"context"

	financeapp "github.com/erp/reconciler/internal/application/finance"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentService records and voids customer payments
type PaymentService interface {
	RecordPayment(ctx context.Context, tenantID uuid.UUID, req financeapp.RecordPaymentRequest) (*financeapp.PaymentResponse, error)
	VoidPayment(ctx context.Context, tenantID, paymentID, actorID uuid.UUID, req financeapp.VoidPaymentRequest) (*financeapp.PaymentResponse, error)
}

// CreditNoteService pays out credit notes
type CreditNoteService interface {
	RefundCreditNote(ctx context.Context, tenantID, creditNoteID, actorID uuid.UUID) (*financeapp.CreditNoteResponse, error)
}

// FinanceHandler handles payment and credit note endpoints
type FinanceHandler struct {
	BaseHandler
	payments    PaymentService
	creditNotes CreditNoteService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(payments PaymentService, creditNotes CreditNoteService) *FinanceHandler {
	return &FinanceHandler{payments: payments, creditNotes: creditNotes}
}

// RecordPayment godoc
//
//	@ID				recordPayment
//	@Summary		Record a payment
//	@Description	Records a collection, or a refund when sale_return_id is set. Refunds must be CLEARED and cannot exceed what is left to refund on the return.
//	@Tags			finance
//	@Accept			json
//	@Produce		json
//	@Param			request	body		financeapp.RecordPaymentRequest	true	"Payment"
//	@Success		201		{object}	APIResponse[financeapp.PaymentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/finance/payments [post]
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req financeapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.CreatedBy = actorID

	resp, err := h.payments.RecordPayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// VoidPayment godoc
//
//	@ID			voidPayment
//	@Summary	Void a payment
//	@Tags		finance
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Payment ID"	format(uuid)
//	@Param		request	body		financeapp.VoidPaymentRequest	true	"Void reason"
//	@Success	200		{object}	APIResponse[financeapp.PaymentResponse]
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/finance/payments/{id}/void [post]
func (h *FinanceHandler) VoidPayment(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	var req financeapp.VoidPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.payments.VoidPayment(c.Request.Context(), tenantID, paymentID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RefundCreditNote godoc
//
//	@ID				refundCreditNote
//	@Summary		Refund a credit note
//	@Description	Pays an unused credit note back to the customer as a cleared refund payment
//	@Tags			finance
//	@Produce		json
//	@Param			id	path		string	true	"Credit note ID"	format(uuid)
//	@Success		200	{object}	APIResponse[financeapp.CreditNoteResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/finance/credit-notes/{id}/refund [post]
func (h *FinanceHandler) RefundCreditNote(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}
	noteID, ok := h.pathID(c, "id", "credit note")
	if !ok {
		return
	}

	resp, err := h.creditNotes.RefundCreditNote(c.Request.Context(), tenantID, noteID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
