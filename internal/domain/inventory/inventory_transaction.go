package inventory

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeReturnIn represents resellable stock coming back from a customer return
	TransactionTypeReturnIn TransactionType = "RETURN_IN"
	// TransactionTypeDamageIn represents returned stock moved into the damage ledger
	TransactionTypeDamageIn TransactionType = "DAMAGE_IN"
	// TransactionTypeSaleOut represents stock leaving with a sale
	TransactionTypeSaleOut TransactionType = "SALE_OUT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReturnIn, TransactionTypeDamageIn, TransactionTypeSaleOut:
		return true
	}
	return false
}

// SourceType identifies the document that caused a stock movement
type SourceType string

const (
	SourceTypeSaleReturn SourceType = "SALE_RETURN"
	SourceTypeSale       SourceType = "SALE"
)

// InventoryTransaction is an immutable record of a stock movement in base units
type InventoryTransaction struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ProductID  uuid.UUID
	BranchID   *uuid.UUID
	Type       TransactionType
	Quantity   decimal.Decimal // base units; positive for inbound
	SourceType SourceType
	SourceID   uuid.UUID
	SourceLine *uuid.UUID
	Note       string
	CreatedAt  time.Time
}

// NewInventoryTransaction creates a stock movement record
func NewInventoryTransaction(
	tenantID, productID uuid.UUID,
	branchID *uuid.UUID,
	txType TransactionType,
	quantity decimal.Decimal,
	sourceType SourceType,
	sourceID uuid.UUID,
) (*InventoryTransaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid inventory transaction type: %s", txType)
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Inventory transaction quantity cannot be zero")
	}
	return &InventoryTransaction{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ProductID:  productID,
		BranchID:   branchID,
		Type:       txType,
		Quantity:   quantity,
		SourceType: sourceType,
		SourceID:   sourceID,
		CreatedAt:  time.Now(),
	}, nil
}

// WithSourceLine records the document line that produced the movement
func (t *InventoryTransaction) WithSourceLine(lineID uuid.UUID) *InventoryTransaction {
	t.SourceLine = &lineID
	return t
}
