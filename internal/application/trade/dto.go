package trade

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sale Return DTOs ====================

// CreateSaleReturnRequest represents a request to create a sale return
type CreateSaleReturnRequest struct {
	SaleID            uuid.UUID                     `json:"sale_id" binding:"required"`
	Items             []CreateSaleReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount          decimal.Decimal               `json:"discount"`
	RestoreStock      *bool                         `json:"restore_stock"` // defaults to true
	IsBadItem         bool                          `json:"is_bad_item"`
	Reason            string                        `json:"reason" binding:"max=500"`
	RequestCreditNote bool                          `json:"request_credit_note"`
	CreatedBy         uuid.UUID                     `json:"-"`
}

// CreateSaleReturnItemRequest represents one line of a return request
type CreateSaleReturnItemRequest struct {
	SaleItemID       uuid.UUID       `json:"sale_item_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	Condition        *string         `json:"condition" binding:"omitempty,oneof=resellable damaged writeoff"`
	StockEffect      *bool           `json:"stock_effect"`
	DamageCategoryID *uuid.UUID      `json:"damage_category_id"`
	Reason           string          `json:"reason" binding:"max=500"`
}

// ApproveSaleReturnRequest represents a request to approve a pending return
type ApproveSaleReturnRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// RejectSaleReturnRequest represents a request to reject a pending return
type RejectSaleReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SaleReturnListFilter represents filter options for listing returns
type SaleReturnListFilter struct {
	Page       int                 `form:"page" binding:"omitempty,min=1"`
	PageSize   int                 `form:"page_size" binding:"omitempty,min=1,max=100"`
	CustomerID *uuid.UUID          `form:"customer_id"`
	SaleID     *uuid.UUID          `form:"sale_id"`
	Status     *trade.ReturnStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// SaleReturnItemResponse represents a return line in API responses
type SaleReturnItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	SaleItemID       uuid.UUID       `json:"sale_item_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineSubtotal     decimal.Decimal `json:"line_subtotal"`
	LineVat          decimal.Decimal `json:"line_vat"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Condition        *string         `json:"condition,omitempty"`
	StockEffect      bool            `json:"stock_effect"`
	Disposition      string          `json:"disposition"`
	DamageCategoryID *uuid.UUID      `json:"damage_category_id,omitempty"`
	Reason           string          `json:"reason,omitempty"`
}

// SaleReturnResponse represents a sale return in API responses
type SaleReturnResponse struct {
	ID                  uuid.UUID                `json:"id"`
	TenantID            uuid.UUID                `json:"tenant_id"`
	ReturnNumber        string                   `json:"return_number"`
	SaleID              uuid.UUID                `json:"sale_id"`
	CustomerID          uuid.UUID                `json:"customer_id"`
	BranchID            uuid.UUID                `json:"branch_id"`
	Subtotal            decimal.Decimal          `json:"subtotal"`
	VatTotal            decimal.Decimal          `json:"vat_total"`
	Discount            decimal.Decimal          `json:"discount"`
	GrandTotal          decimal.Decimal          `json:"grand_total"`
	Status              string                   `json:"status"`
	ReturnType          string                   `json:"return_type"`
	ReturnCategory      *string                  `json:"return_category,omitempty"`
	Reason              string                   `json:"reason,omitempty"`
	CreditNoteRequested bool                     `json:"credit_note_requested"`
	CreditNoteID        *uuid.UUID               `json:"credit_note_id,omitempty"`
	ApprovedBy          *uuid.UUID               `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time               `json:"approved_at,omitempty"`
	RejectedAt          *time.Time               `json:"rejected_at,omitempty"`
	RejectionReason     string                   `json:"rejection_reason,omitempty"`
	Items               []SaleReturnItemResponse `json:"items"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
	Version             int                      `json:"version"`
}

// ToSaleReturnResponse converts a domain SaleReturn to a response DTO
func ToSaleReturnResponse(sr *trade.SaleReturn) SaleReturnResponse {
	items := make([]SaleReturnItemResponse, len(sr.Items))
	for i := range sr.Items {
		items[i] = toSaleReturnItemResponse(sr, &sr.Items[i])
	}
	var category *string
	if sr.ReturnCategory != nil {
		c := string(*sr.ReturnCategory)
		category = &c
	}
	return SaleReturnResponse{
		ID:                  sr.ID,
		TenantID:            sr.TenantID,
		ReturnNumber:        sr.ReturnNumber,
		SaleID:              sr.SaleID,
		CustomerID:          sr.CustomerID,
		BranchID:            sr.BranchID,
		Subtotal:            sr.Subtotal,
		VatTotal:            sr.VatTotal,
		Discount:            sr.Discount,
		GrandTotal:          sr.GrandTotal,
		Status:              string(sr.Status),
		ReturnType:          string(sr.ReturnType),
		ReturnCategory:      category,
		Reason:              sr.Reason,
		CreditNoteRequested: sr.CreditNoteRequested,
		ApprovedBy:          sr.ApprovedBy,
		ApprovedAt:          sr.ApprovedAt,
		RejectedAt:          sr.RejectedAt,
		RejectionReason:     sr.RejectionReason,
		Items:               items,
		CreatedAt:           sr.CreatedAt,
		UpdatedAt:           sr.UpdatedAt,
		Version:             sr.Version,
	}
}

func toSaleReturnItemResponse(sr *trade.SaleReturn, item *trade.SaleReturnItem) SaleReturnItemResponse {
	var condition *string
	if item.Condition != nil {
		c := string(*item.Condition)
		condition = &c
	}
	return SaleReturnItemResponse{
		ID:               item.ID,
		SaleItemID:       item.SaleItemID,
		ProductID:        item.ProductID,
		ProductName:      item.ProductName,
		Quantity:         item.Quantity,
		UnitPrice:        item.UnitPrice,
		LineSubtotal:     item.LineSubtotal,
		LineVat:          item.LineVat,
		LineTotal:        item.LineTotal,
		Condition:        condition,
		StockEffect:      item.StockEffect,
		Disposition:      string(sr.ItemDisposition(item)),
		DamageCategoryID: item.DamageCategoryID,
		Reason:           item.Reason,
	}
}

// SaleReturnListItemResponse represents a return in list responses
type SaleReturnListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ReturnNumber string          `json:"return_number"`
	SaleID       uuid.UUID       `json:"sale_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Status       string          `json:"status"`
	ReturnType   string          `json:"return_type"`
	ItemCount    int             `json:"item_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToSaleReturnListItemResponses converts returns to list DTOs
func ToSaleReturnListItemResponses(returns []trade.SaleReturn) []SaleReturnListItemResponse {
	out := make([]SaleReturnListItemResponse, len(returns))
	for i := range returns {
		sr := &returns[i]
		out[i] = SaleReturnListItemResponse{
			ID:           sr.ID,
			ReturnNumber: sr.ReturnNumber,
			SaleID:       sr.SaleID,
			CustomerID:   sr.CustomerID,
			GrandTotal:   sr.GrandTotal,
			Status:       string(sr.Status),
			ReturnType:   string(sr.ReturnType),
			ItemCount:    len(sr.Items),
			CreatedAt:    sr.CreatedAt,
		}
	}
	return out
}

// ReturnableLineResponse reports what remains returnable on a sale item
type ReturnableLineResponse struct {
	SaleItemID       uuid.UUID       `json:"sale_item_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	SoldQuantity     decimal.Decimal `json:"sold_quantity"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	Returnable       decimal.Decimal `json:"returnable"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// ReturnableResponse lists returnable quantities for a sale
type ReturnableResponse struct {
	SaleID           uuid.UUID                `json:"sale_id"`
	FullyReturned    bool                     `json:"fully_returned"`
	Lines            []ReturnableLineResponse `json:"lines"`
	ReturnsEnabled   bool                     `json:"returns_enabled"`
	RequiresApproval bool                     `json:"requires_approval"`
}

// ==================== Sale DTOs ====================

// CreateSaleRequest represents a request to record an invoiced sale
type CreateSaleRequest struct {
	CustomerID    uuid.UUID               `json:"customer_id" binding:"required"`
	BranchID      uuid.UUID               `json:"branch_id" binding:"required"`
	InvoiceNumber string                  `json:"invoice_number" binding:"required,min=1,max=50"`
	GrandTotal    decimal.Decimal         `json:"grand_total" binding:"required,money"`
	Items         []CreateSaleItemRequest `json:"items" binding:"required,min=1,dive"`
	CreatedBy     uuid.UUID               `json:"-"`
}

// CreateSaleItemRequest represents one invoiced line
type CreateSaleItemRequest struct {
	ProductID        uuid.UUID       `json:"product_id" binding:"required"`
	ProductName      string          `json:"product_name" binding:"required,min=1,max=200"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	UnitPrice        decimal.Decimal `json:"unit_price" binding:"required,money"`
	ConversionToBase decimal.Decimal `json:"conversion_to_base"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	BranchID      uuid.UUID       `json:"branch_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	IsDeleted     bool            `json:"is_deleted"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToSaleResponse converts a domain Sale to a response DTO
func ToSaleResponse(s *trade.Sale) SaleResponse {
	return SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		BranchID:      s.BranchID,
		GrandTotal:    s.GrandTotal,
		IsDeleted:     s.IsDeleted,
		ItemCount:     len(s.Items),
		CreatedAt:     s.CreatedAt,
	}
}

func toReturnFilter(f SaleReturnListFilter) trade.SaleReturnFilter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	return trade.SaleReturnFilter{
		Filter:     filter,
		CustomerID: f.CustomerID,
		SaleID:     f.SaleID,
		Status:     f.Status,
	}
}
