package handler

import (
	"context"

	tradeapp "github.com/erp/reconciler/internal/application/trade"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleReturnService is the return lifecycle used by SaleReturnHandler
type SaleReturnService interface {
	CreateSaleReturn(ctx context.Context, tenantID uuid.UUID, req tradeapp.CreateSaleReturnRequest) (*tradeapp.SaleReturnResponse, error)
	ApproveSaleReturn(ctx context.Context, tenantID, returnID, approverID uuid.UUID, req tradeapp.ApproveSaleReturnRequest) (*tradeapp.SaleReturnResponse, error)
	RejectSaleReturn(ctx context.Context, tenantID, returnID, rejecterID uuid.UUID, req tradeapp.RejectSaleReturnRequest) (*tradeapp.SaleReturnResponse, error)
	DeleteSaleReturn(ctx context.Context, tenantID, returnID, actorID uuid.UUID) error
	GetSaleReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*tradeapp.SaleReturnResponse, error)
	ListSaleReturns(ctx context.Context, tenantID uuid.UUID, filter tradeapp.SaleReturnListFilter) (shared.Paginated[tradeapp.SaleReturnListItemResponse], error)
	GetReturnableQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (*tradeapp.ReturnableResponse, error)
}

// SaleReturnHandler handles sale return endpoints
type SaleReturnHandler struct {
	BaseHandler
	service SaleReturnService
}

// NewSaleReturnHandler creates a new SaleReturnHandler
func NewSaleReturnHandler(service SaleReturnService) *SaleReturnHandler {
	return &SaleReturnHandler{service: service}
}

// Create godoc
//
//	@ID				createSaleReturn
//	@Summary		Create a sale return
//	@Description	Validates quantities against the sale and creates the return. Tenants that do not require approval get it approved in the same transaction.
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tradeapp.CreateSaleReturnRequest	true	"Return request"
//	@Success		201		{object}	APIResponse[tradeapp.SaleReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/sale-returns [post]
func (h *SaleReturnHandler) Create(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req tradeapp.CreateSaleReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.CreatedBy = actorID

	resp, err := h.service.CreateSaleReturn(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@ID			listSaleReturns
//	@Summary	List sale returns
//	@Tags		sale-returns
//	@Produce	json
//	@Param		page		query		int		false	"Page number"	default(1)
//	@Param		page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Param		customer_id	query		string	false	"Customer ID"	format(uuid)
//	@Param		sale_id		query		string	false	"Sale ID"		format(uuid)
//	@Param		status		query		string	false	"Status"		Enums(PENDING, APPROVED, REJECTED)
//	@Success	200			{object}	APIResponse[[]tradeapp.SaleReturnListItemResponse]
//	@Failure	400			{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/trade/sale-returns [get]
func (h *SaleReturnHandler) List(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var filter tradeapp.SaleReturnListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.service.ListSaleReturns(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
//
//	@ID			getSaleReturn
//	@Summary	Get a sale return
//	@Tags		sale-returns
//	@Produce	json
//	@Param		id	path		string	true	"Sale return ID"	format(uuid)
//	@Success	200	{object}	APIResponse[tradeapp.SaleReturnResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/trade/sale-returns/{id} [get]
func (h *SaleReturnHandler) Get(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	resp, err := h.service.GetSaleReturn(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve godoc
//
//	@ID				approveSaleReturn
//	@Summary		Approve a sale return
//	@Description	Transitions a PENDING return to APPROVED and applies its stock, damage, expense, credit note and balance effects
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Sale return ID"	format(uuid)
//	@Param			request	body		tradeapp.ApproveSaleReturnRequest	false	"Approval note"
//	@Success		200		{object}	APIResponse[tradeapp.SaleReturnResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/sale-returns/{id}/approve [post]
func (h *SaleReturnHandler) Approve(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	var req tradeapp.ApproveSaleReturnRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	resp, err := h.service.ApproveSaleReturn(c.Request.Context(), tenantID, returnID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject godoc
//
//	@ID			rejectSaleReturn
//	@Summary	Reject a sale return
//	@Tags		sale-returns
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Sale return ID"	format(uuid)
//	@Param		request	body		tradeapp.RejectSaleReturnRequest	true	"Rejection reason"
//	@Success	200		{object}	APIResponse[tradeapp.SaleReturnResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/trade/sale-returns/{id}/reject [post]
func (h *SaleReturnHandler) Reject(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	var req tradeapp.RejectSaleReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.RejectSaleReturn(c.Request.Context(), tenantID, returnID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
//
//	@ID				deleteSaleReturn
//	@Summary		Delete a sale return
//	@Description	Only PENDING and REJECTED returns can be deleted
//	@Tags			sale-returns
//	@Param			id	path	string	true	"Sale return ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/sale-returns/{id} [delete]
func (h *SaleReturnHandler) Delete(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c, "id", "return")
	if !ok {
		return
	}

	if err := h.service.DeleteSaleReturn(c.Request.Context(), tenantID, returnID, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Returnable godoc
//
//	@ID			getSaleReturnable
//	@Summary	Get returnable quantities of a sale
//	@Tags		sale-returns
//	@Produce	json
//	@Param		id	path		string	true	"Sale ID"	format(uuid)
//	@Success	200	{object}	APIResponse[tradeapp.ReturnableResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/trade/sales/{id}/returnable [get]
func (h *SaleReturnHandler) Returnable(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	saleID, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	resp, err := h.service.GetReturnableQuantities(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
