package handler

import (
	"context"

	tradeapp "github.com/erp/reconciler/internal/application/trade"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleService records and removes invoiced sales
type SaleService interface {
	CreateSale(ctx context.Context, tenantID uuid.UUID, req tradeapp.CreateSaleRequest) (*tradeapp.SaleResponse, error)
	SoftDeleteSale(ctx context.Context, tenantID, saleID, actorID uuid.UUID) error
}

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	service SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(service SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// Create godoc
//
//	@ID			createSale
//	@Summary	Record an invoiced sale
//	@Tags		sales
//	@Accept		json
//	@Produce	json
//	@Param		request	body		tradeapp.CreateSaleRequest	true	"Sale"
//	@Success	201		{object}	APIResponse[tradeapp.SaleResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/trade/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req tradeapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.CreatedBy = actorID

	resp, err := h.service.CreateSale(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Delete godoc
//
//	@ID				deleteSale
//	@Summary		Soft delete a sale
//	@Description	The sale drops out of the customer's balance; recorded returns stay
//	@Tags			sales
//	@Param			id	path	string	true	"Sale ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
	tenantID, actorID, ok := h.requestScope(c)
	if !ok {
		return
	}
	saleID, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	if err := h.service.SoftDeleteSale(c.Request.Context(), tenantID, saleID, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
