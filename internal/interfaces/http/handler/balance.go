package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/erp/reconciler/internal/application/balance"
	"github.com/erp/reconciler/internal/infrastructure/export"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BalanceRecalculator recomputes stored balances
type BalanceRecalculator interface {
	RecalculateCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) (*balance.CustomerBalanceDTO, error)
	RecalculateAllCustomerBalances(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// DriftChecker reports and repairs balance drift
type DriftChecker interface {
	CheckCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*balance.DriftResult, error)
	ValidateTenant(ctx context.Context, tenantID uuid.UUID) (*balance.DriftReport, error)
	RepairTenant(ctx context.Context, tenantID uuid.UUID) (*balance.DriftReport, error)
}

// BalanceHandler handles balance check, drift and repair endpoints
type BalanceHandler struct {
	BaseHandler
	balances BalanceRecalculator
	drift    DriftChecker
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balances BalanceRecalculator, drift DriftChecker) *BalanceHandler {
	return &BalanceHandler{balances: balances, drift: drift}
}

// RepairRequest must carry confirm=true; repairs rewrite stored balances
type RepairRequest struct {
	Confirm bool `json:"confirm"`
}

// CheckCustomer godoc
//
//	@ID				checkCustomerBalance
//	@Summary		Check a customer's balance
//	@Description	Compares the stored balance with the ledger without changing anything. With strict=true a drifted customer answers 409.
//	@Tags			balances
//	@Produce		json
//	@Param			id		path		string	true	"Customer ID"	format(uuid)
//	@Param			strict	query		bool	false	"Fail on drift"
//	@Success		200		{object}	APIResponse[balance.DriftResult]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/partner/customers/{id}/balance [get]
func (h *BalanceHandler) CheckCustomer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	customerID, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.drift.CheckCustomer(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if strict, _ := strconv.ParseBool(c.Query("strict")); strict {
		if err := result.Err(); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, result)
}

// RecalculateCustomer godoc
//
//	@ID			recalculateCustomerBalance
//	@Summary	Recalculate a customer's balance
//	@Tags		balances
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"	format(uuid)
//	@Success	200	{object}	APIResponse[balance.CustomerBalanceDTO]
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/partner/customers/{id}/balance/recalculate [post]
func (h *BalanceHandler) RecalculateCustomer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	customerID, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.balances.RecalculateCustomerBalance(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RecalculateAll godoc
//
//	@ID			recalculateAllBalances
//	@Summary	Recalculate every customer balance of the tenant
//	@Tags		balances
//	@Produce	json
//	@Success	200	{object}	APIResponse[CountData]
//	@Security	BearerAuth
//	@Router		/finance/balances/recalculate-all [post]
func (h *BalanceHandler) RecalculateAll(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	count, err := h.balances.RecalculateAllCustomerBalances(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// DriftReport godoc
//
//	@ID			getDriftReport
//	@Summary	Report balance drift across the tenant
//	@Tags		balances
//	@Produce	json
//	@Success	200	{object}	APIResponse[balance.DriftReport]
//	@Security	BearerAuth
//	@Router		/finance/balances/drift [get]
func (h *BalanceHandler) DriftReport(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	report, err := h.drift.ValidateTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ExportDriftReport godoc
//
//	@ID			exportDriftReport
//	@Summary	Download the drift report as an XLSX workbook
//	@Tags		balances
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success	200	{file}	binary
//	@Security	BearerAuth
//	@Router		/finance/balances/drift/export [get]
func (h *BalanceHandler) ExportDriftReport(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	report, err := h.drift.ValidateTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Render fully before writing headers so a failure can still answer 500
	var buf bytes.Buffer
	if err := export.WriteDriftReport(&buf, report); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.DriftFilename(report)+`"`)
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// Repair godoc
//
//	@ID				repairBalances
//	@Summary		Repair drifted balances
//	@Description	Rewrites every drifted balance from the ledger. Requires {"confirm": true}.
//	@Tags			balances
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RepairRequest	true	"Confirmation"
//	@Success		200		{object}	APIResponse[balance.DriftReport]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/finance/balances/repair [post]
func (h *BalanceHandler) Repair(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !req.Confirm {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Repair requires confirm=true")
		return
	}

	report, err := h.drift.RepairTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
