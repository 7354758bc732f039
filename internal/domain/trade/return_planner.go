package trade

import (
	"time"

	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnVATRate is applied to every return line.
// TODO: read the rate from the tenant's tax configuration once tax rules are
// exposed to this service; sales invoiced at other rates are refunded at 5%.
var ReturnVATRate = decimal.NewFromFloat(0.05)

// ReturnLineRequest is one requested return line
type ReturnLineRequest struct {
	SaleItemID       uuid.UUID
	Quantity         decimal.Decimal
	Condition        *ItemCondition
	StockEffect      *bool
	DamageCategoryID *uuid.UUID
	Reason           string
}

// ReturnRequest is the validated input for planning a return
type ReturnRequest struct {
	ReturnNumber        string
	Lines               []ReturnLineRequest
	Discount            decimal.Decimal
	RestoreStock        bool
	IsBadItem           bool
	Reason              string
	CreditNoteRequested bool
	RequireApproval     bool
	CreatedBy           uuid.UUID
}

// ReturnPlanner turns a request against a sale into a priced, classified SaleReturn.
// It performs no I/O; callers load the sale, prior returned quantities and
// referenced damage categories first.
type ReturnPlanner struct {
	chain StockEffectChain
}

// ReturnPlannerOption configures a ReturnPlanner
type ReturnPlannerOption func(*ReturnPlanner)

// WithStockEffectChain replaces the resolver chain
func WithStockEffectChain(chain StockEffectChain) ReturnPlannerOption {
	return func(p *ReturnPlanner) {
		p.chain = chain
	}
}

// NewReturnPlanner creates a planner using the default resolver chain
func NewReturnPlanner(opts ...ReturnPlannerOption) *ReturnPlanner {
	p := &ReturnPlanner{chain: DefaultStockEffectChain()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan validates quantities, resolves stock effects, prices lines and derives
// classification. alreadyReturned is keyed by sale item ID and counts prior
// returns of every status. categories holds the damage categories referenced
// by the request that belong to the sale's tenant.
func (p *ReturnPlanner) Plan(
	sale *Sale,
	alreadyReturned map[uuid.UUID]decimal.Decimal,
	categories map[uuid.UUID]*inventory.DamageCategory,
	req ReturnRequest,
) (*SaleReturn, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one return line is required")
	}

	remaining := make(map[uuid.UUID]decimal.Decimal, len(sale.Items))
	anyRemaining := false
	for _, item := range sale.Items {
		left := item.Quantity.Sub(alreadyReturned[item.ID])
		if left.IsNegative() {
			left = decimal.Zero
		}
		remaining[item.ID] = left
		if left.IsPositive() {
			anyRemaining = true
		}
	}
	if !anyRemaining {
		return nil, shared.NewDomainErrorf(shared.CodeAlreadyFullyReturned, "Sale %s has already been fully returned", sale.InvoiceNumber)
	}

	now := time.Now()
	sr := &SaleReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(sale.TenantID),
		ReturnNumber:        req.ReturnNumber,
		SaleID:              sale.ID,
		CustomerID:          sale.CustomerID,
		BranchID:            sale.BranchID,
		RestoreStock:        req.RestoreStock,
		IsBadItem:           req.IsBadItem,
		Reason:              req.Reason,
		CreditNoteRequested: req.CreditNoteRequested,
		Items:               make([]SaleReturnItem, 0, len(req.Lines)),
	}
	sr.SetCreatedBy(req.CreatedBy)

	requested := make(map[uuid.UUID]decimal.Decimal, len(req.Lines))
	for i, line := range req.Lines {
		lineNo := i + 1
		item := sale.Item(line.SaleItemID)
		if item == nil {
			return nil, shared.NotFoundf("Line %d: sale item %s not found on sale %s", lineNo, line.SaleItemID, sale.InvoiceNumber)
		}
		if !line.Quantity.IsPositive() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidQuantity,
				"Line %d (%s): return quantity must be greater than zero", lineNo, item.ProductName)
		}
		maxReturnable := remaining[item.ID].Sub(requested[item.ID])
		if line.Quantity.GreaterThan(maxReturnable) {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidQuantity,
				"Line %d (%s): requested %s exceeds returnable %s (sold %s, already returned %s)",
				lineNo, item.ProductName, line.Quantity, maxReturnable, item.Quantity, alreadyReturned[item.ID])
		}
		requested[item.ID] = requested[item.ID].Add(line.Quantity)

		if line.Condition != nil && !line.Condition.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Line %d: unknown condition %q", lineNo, *line.Condition)
		}

		var category *inventory.DamageCategory
		if line.DamageCategoryID != nil {
			category = categories[*line.DamageCategoryID]
			if category == nil {
				return nil, shared.NotFoundf("Line %d: damage category %s not found", lineNo, *line.DamageCategoryID)
			}
		}

		restore := p.chain.Resolve(StockEffectInput{
			Condition:      line.Condition,
			StockEffect:    line.StockEffect,
			DamageCategory: category,
			RestoreStock:   req.RestoreStock,
			IsBadItem:      req.IsBadItem,
		})

		subtotal, vat, total := PriceLine(line.Quantity, item.UnitPrice)
		sr.Items = append(sr.Items, SaleReturnItem{
			ID:               uuid.New(),
			ReturnID:         sr.ID,
			SaleItemID:       item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         line.Quantity,
			UnitPrice:        item.UnitPrice,
			ConversionToBase: item.ConversionToBase,
			LineSubtotal:     subtotal,
			LineVat:          vat,
			LineTotal:        total,
			Condition:        line.Condition,
			StockEffect:      restore,
			DamageCategoryID: line.DamageCategoryID,
			Reason:           line.Reason,
			CreatedAt:        now,
		})
		sr.Subtotal = sr.Subtotal.Add(subtotal)
		sr.VatTotal = sr.VatTotal.Add(vat)
	}

	gross := sr.Subtotal.Add(sr.VatTotal)
	if req.Discount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Discount cannot be negative")
	}
	if req.Discount.GreaterThan(gross) {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Discount %s exceeds return total %s", req.Discount, gross)
	}
	sr.Discount = req.Discount
	sr.GrandTotal = gross.Sub(req.Discount)

	sr.ReturnType = DeriveReturnType(sale, remaining, requested)
	sr.ReturnCategory = DeriveReturnCategory(sr.Items)

	if req.RequireApproval {
		sr.Status = ReturnStatusPending
	} else {
		sr.Status = ReturnStatusApproved
		sr.ApprovedAt = &now
		sr.ApprovedBy = sr.CreatedBy
	}

	sr.AddDomainEvent(NewSaleReturnCreatedEvent(sr))
	return sr, nil
}

// PriceLine computes a line's subtotal, VAT and total. VAT is rounded to cents.
func PriceLine(quantity, unitPrice decimal.Decimal) (subtotal, vat, total decimal.Decimal) {
	subtotal = quantity.Mul(unitPrice)
	vat = subtotal.Mul(ReturnVATRate).Round(2)
	return subtotal, vat, subtotal.Add(vat)
}

// DeriveReturnType is FULL only when every sale item is represented and each
// requested quantity equals what remained returnable before this return.
func DeriveReturnType(sale *Sale, remaining, requested map[uuid.UUID]decimal.Decimal) ReturnType {
	for _, item := range sale.Items {
		qty, ok := requested[item.ID]
		if !ok || !qty.Equal(remaining[item.ID]) {
			return ReturnTypePartial
		}
	}
	return ReturnTypeFull
}

// DeriveReturnCategory picks the most severe observed condition.
// Uniformly resellable lines give resellable; a mix of resellable and
// unspecified lines gives not_liked; no conditions at all gives nil.
func DeriveReturnCategory(items []SaleReturnItem) *ReturnCategory {
	var hasWriteOff, hasDamaged, hasResellable, hasUnspecified bool
	for _, item := range items {
		if item.Condition == nil {
			hasUnspecified = true
			continue
		}
		switch *item.Condition {
		case ConditionWriteOff:
			hasWriteOff = true
		case ConditionDamaged:
			hasDamaged = true
		case ConditionResellable:
			hasResellable = true
		}
	}

	var category ReturnCategory
	switch {
	case hasWriteOff:
		category = ReturnCategoryWriteOff
	case hasDamaged:
		category = ReturnCategoryDamaged
	case hasResellable && !hasUnspecified:
		category = ReturnCategoryResellable
	case hasResellable:
		category = ReturnCategoryNotLiked
	default:
		return nil
	}
	return &category
}

// ReturnableLine reports what is still returnable for one sale item
type ReturnableLine struct {
	SaleItemID       uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	SoldQuantity     decimal.Decimal
	ReturnedQuantity decimal.Decimal
	Returnable       decimal.Decimal
	UnitPrice        decimal.Decimal
}

// ReturnableLines lists each sale item with its remaining returnable quantity
func ReturnableLines(sale *Sale, alreadyReturned map[uuid.UUID]decimal.Decimal) []ReturnableLine {
	lines := make([]ReturnableLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		returned := alreadyReturned[item.ID]
		left := item.Quantity.Sub(returned)
		if left.IsNegative() {
			left = decimal.Zero
		}
		lines = append(lines, ReturnableLine{
			SaleItemID:       item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			SoldQuantity:     item.Quantity,
			ReturnedQuantity: returned,
			Returnable:       left,
			UnitPrice:        item.UnitPrice,
		})
	}
	return lines
}
