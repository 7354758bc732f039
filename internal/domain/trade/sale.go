package trade

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItem is one invoiced line of a sale
type SaleItem struct {
	ID               uuid.UUID
	SaleID           uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	Quantity         decimal.Decimal // in selling units
	UnitPrice        decimal.Decimal
	ConversionToBase decimal.Decimal // selling unit to base unit, snapshotted at sale time
}

// Sale is an issued invoice. Only non-deleted sales contribute to the customer balance.
type Sale struct {
	shared.TenantAggregateRoot
	InvoiceNumber string
	CustomerID    uuid.UUID
	BranchID      uuid.UUID
	GrandTotal    decimal.Decimal
	IsDeleted     bool
	DeletedAt     *time.Time
	Items         []SaleItem
}

// SaleItemInput describes a line when creating a sale
type SaleItemInput struct {
	ProductID        uuid.UUID
	ProductName      string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	ConversionToBase decimal.Decimal
}

// NewSale creates a sale. GrandTotal is taken as invoiced (tax and discounts
// are decided by the invoicing collaborator).
func NewSale(tenantID, customerID, branchID uuid.UUID, invoiceNumber string, grandTotal decimal.Decimal, items []SaleItemInput) (*Sale, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number cannot be empty")
	}
	if grandTotal.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Grand total cannot be negative")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale must have at least one item")
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		BranchID:            branchID,
		GrandTotal:          grandTotal,
		Items:               make([]SaleItem, 0, len(items)),
	}
	for i, in := range items {
		if in.ProductID == uuid.Nil {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Item %d: product ID cannot be empty", i+1)
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Item %d: quantity must be positive", i+1)
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Item %d: unit price cannot be negative", i+1)
		}
		conv := in.ConversionToBase
		if conv.IsZero() {
			conv = decimal.NewFromInt(1)
		}
		sale.Items = append(sale.Items, SaleItem{
			ID:               uuid.New(),
			SaleID:           sale.ID,
			ProductID:        in.ProductID,
			ProductName:      in.ProductName,
			Quantity:         in.Quantity,
			UnitPrice:        in.UnitPrice,
			ConversionToBase: conv,
		})
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))
	return sale, nil
}

// SoftDelete marks the sale deleted; it stops contributing to the balance
func (s *Sale) SoftDelete() error {
	if s.IsDeleted {
		return shared.NewDomainError(shared.CodeInvalidState, "Sale is already deleted")
	}
	now := time.Now()
	s.IsDeleted = true
	s.DeletedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleDeletedEvent(s))
	return nil
}

// Item returns the sale item with the given ID
func (s *Sale) Item(itemID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}
