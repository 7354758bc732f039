package trade

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the status of a sale return
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "PENDING"  // Waiting for approval, no side effects applied
	ReturnStatusApproved ReturnStatus = "APPROVED" // Stock, damage and expense effects applied
	ReturnStatusRejected ReturnStatus = "REJECTED" // Terminal, no side effects ever applied
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	if s == ReturnStatusPending {
		return target == ReturnStatusApproved || target == ReturnStatusRejected
	}
	return false
}

// ReturnType is derived from coverage of the original sale; it is informational only
type ReturnType string

const (
	ReturnTypeFull    ReturnType = "FULL"
	ReturnTypePartial ReturnType = "PARTIAL"
)

// ReturnCategory summarizes the conditions of a return's lines
type ReturnCategory string

const (
	ReturnCategoryResellable ReturnCategory = "resellable"
	ReturnCategoryDamaged    ReturnCategory = "damaged"
	ReturnCategoryWriteOff   ReturnCategory = "writeoff"
	ReturnCategoryNotLiked   ReturnCategory = "not_liked"
)

// ItemCondition is the physical condition of returned goods on one line
type ItemCondition string

const (
	ConditionResellable ItemCondition = "resellable"
	ConditionDamaged    ItemCondition = "damaged"
	ConditionWriteOff   ItemCondition = "writeoff"
)

// IsValid checks if the condition is a known value
func (c ItemCondition) IsValid() bool {
	switch c {
	case ConditionResellable, ConditionDamaged, ConditionWriteOff:
		return true
	}
	return false
}

// Disposition is where a returned line ends up
type Disposition string

const (
	DispositionRestock  Disposition = "RESTOCK"   // back into sellable stock
	DispositionDamaged  Disposition = "DAMAGED"   // into the damage ledger
	DispositionWriteOff Disposition = "WRITE_OFF" // expensed as a total loss
	DispositionNone     Disposition = "NONE"      // credited only, no inventory or expense effect
)

// SaleReturnItem is one line of a sale return. Items are immutable after creation.
type SaleReturnItem struct {
	ID               uuid.UUID
	ReturnID         uuid.UUID
	SaleItemID       uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	ConversionToBase decimal.Decimal
	LineSubtotal     decimal.Decimal // Quantity * UnitPrice
	LineVat          decimal.Decimal
	LineTotal        decimal.Decimal // LineSubtotal + LineVat
	Condition        *ItemCondition
	StockEffect      bool // whether the line adds quantity back to sellable stock
	DamageCategoryID *uuid.UUID
	Reason           string
	CreatedAt        time.Time
}

// BaseQuantity returns the returned quantity in base units
func (i *SaleReturnItem) BaseQuantity() decimal.Decimal {
	if i.ConversionToBase.IsZero() {
		return i.Quantity
	}
	return i.Quantity.Mul(i.ConversionToBase)
}

// HasDamageSignal reports whether the line itself marks the goods as damaged
func (i *SaleReturnItem) HasDamageSignal() bool {
	if i.Condition != nil {
		return *i.Condition == ConditionDamaged
	}
	return i.DamageCategoryID != nil
}

// ItemDisposition derives where the goods of one line go. Stock effect wins,
// then write-off. A line that is not restocked enters the damage ledger only
// when something marks it damaged: its condition, its damage category, or a
// bad-item return without a line condition. Anything else is credited without
// moving goods.
func (sr *SaleReturn) ItemDisposition(item *SaleReturnItem) Disposition {
	switch {
	case item.StockEffect:
		return DispositionRestock
	case item.Condition != nil && *item.Condition == ConditionWriteOff:
		return DispositionWriteOff
	case item.HasDamageSignal(), item.Condition == nil && sr.IsBadItem:
		return DispositionDamaged
	default:
		return DispositionNone
	}
}

// SaleReturn is the aggregate root for goods a customer sends back
type SaleReturn struct {
	shared.TenantAggregateRoot
	ReturnNumber        string
	SaleID              uuid.UUID
	CustomerID          uuid.UUID
	BranchID            uuid.UUID
	Subtotal            decimal.Decimal
	VatTotal            decimal.Decimal
	Discount            decimal.Decimal
	GrandTotal          decimal.Decimal // Subtotal + VatTotal - Discount
	Status              ReturnStatus
	ReturnType          ReturnType
	ReturnCategory      *ReturnCategory
	RestoreStock        bool // return-level default for lines without a more specific rule
	IsBadItem           bool
	Reason              string
	CreditNoteRequested bool
	ApprovedBy          *uuid.UUID
	ApprovedAt          *time.Time
	ApprovalNote        string
	RejectedBy          *uuid.UUID
	RejectedAt          *time.Time
	RejectionReason     string
	Items               []SaleReturnItem
}

// Approve transitions a pending return to approved
func (r *SaleReturn) Approve(approverID uuid.UUID, note string) error {
	if !r.Status.CanTransitionTo(ReturnStatusApproved) {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot approve return in %s status", r.Status)
	}
	now := time.Now()
	r.Status = ReturnStatusApproved
	r.ApprovedAt = &now
	if approverID != uuid.Nil {
		r.ApprovedBy = &approverID
	}
	r.ApprovalNote = note
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewSaleReturnApprovedEvent(r))
	return nil
}

// Reject transitions a pending return to rejected
func (r *SaleReturn) Reject(rejecterID uuid.UUID, reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusRejected) {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot reject return in %s status", r.Status)
	}
	now := time.Now()
	r.Status = ReturnStatusRejected
	r.RejectedAt = &now
	if rejecterID != uuid.Nil {
		r.RejectedBy = &rejecterID
	}
	r.RejectionReason = reason
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewSaleReturnRejectedEvent(r))
	return nil
}

// EnsureDeletable returns InvalidState unless the return is still pending.
// Approved returns have applied side effects and cannot be removed.
func (r *SaleReturn) EnsureDeletable() error {
	if r.Status != ReturnStatusPending {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot delete return in %s status", r.Status)
	}
	return nil
}

// IsPending returns true if the return awaits approval
func (r *SaleReturn) IsPending() bool {
	return r.Status == ReturnStatusPending
}

// IsApproved returns true if side effects have been applied
func (r *SaleReturn) IsApproved() bool {
	return r.Status == ReturnStatusApproved
}

// TotalQuantity returns the sum of returned quantities
func (r *SaleReturn) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Quantity)
	}
	return total
}
