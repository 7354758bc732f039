package trade

import (
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSale       = "Sale"
	AggregateTypeSaleReturn = "SaleReturn"
)

// Event type constants
const (
	EventTypeSaleCreated        = "SaleCreated"
	EventTypeSaleDeleted        = "SaleDeleted"
	EventTypeSaleReturnCreated  = "SaleReturnCreated"
	EventTypeSaleReturnApproved = "SaleReturnApproved"
	EventTypeSaleReturnRejected = "SaleReturnRejected"
	EventTypeSaleReturnDeleted  = "SaleReturnDeleted"
)

// SaleCreatedEvent is raised when a sale is recorded
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		InvoiceNumber:   s.InvoiceNumber,
		CustomerID:      s.CustomerID,
		GrandTotal:      s.GrandTotal,
	}
}

// SaleDeletedEvent is raised when a sale is soft deleted
type SaleDeletedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID `json:"sale_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewSaleDeletedEvent creates a new SaleDeletedEvent
func NewSaleDeletedEvent(s *Sale) *SaleDeletedEvent {
	return &SaleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleDeleted, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		CustomerID:      s.CustomerID,
	}
}

// SaleReturnCreatedEvent is raised when a sale return is created
type SaleReturnCreatedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID       `json:"return_id"`
	ReturnNumber string          `json:"return_number"`
	SaleID       uuid.UUID       `json:"sale_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Status       ReturnStatus    `json:"status"`
	ReturnType   ReturnType      `json:"return_type"`
}

// NewSaleReturnCreatedEvent creates a new SaleReturnCreatedEvent
func NewSaleReturnCreatedEvent(r *SaleReturn) *SaleReturnCreatedEvent {
	return &SaleReturnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnCreated, AggregateTypeSaleReturn, r.ID, r.TenantID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		SaleID:          r.SaleID,
		CustomerID:      r.CustomerID,
		GrandTotal:      r.GrandTotal,
		Status:          r.Status,
		ReturnType:      r.ReturnType,
	}
}

// SaleReturnApprovedEvent is raised when a pending return is approved
type SaleReturnApprovedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID       `json:"return_id"`
	ReturnNumber string          `json:"return_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	ApprovedBy   *uuid.UUID      `json:"approved_by,omitempty"`
}

// NewSaleReturnApprovedEvent creates a new SaleReturnApprovedEvent
func NewSaleReturnApprovedEvent(r *SaleReturn) *SaleReturnApprovedEvent {
	return &SaleReturnApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnApproved, AggregateTypeSaleReturn, r.ID, r.TenantID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		CustomerID:      r.CustomerID,
		GrandTotal:      r.GrandTotal,
		ApprovedBy:      r.ApprovedBy,
	}
}

// SaleReturnRejectedEvent is raised when a pending return is rejected
type SaleReturnRejectedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID `json:"return_id"`
	ReturnNumber string    `json:"return_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	Reason       string    `json:"reason"`
}

// NewSaleReturnRejectedEvent creates a new SaleReturnRejectedEvent
func NewSaleReturnRejectedEvent(r *SaleReturn) *SaleReturnRejectedEvent {
	return &SaleReturnRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnRejected, AggregateTypeSaleReturn, r.ID, r.TenantID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		CustomerID:      r.CustomerID,
		Reason:          r.RejectionReason,
	}
}

// SaleReturnDeletedEvent is raised when a pending return is removed
type SaleReturnDeletedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID `json:"return_id"`
	ReturnNumber string    `json:"return_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
}

// NewSaleReturnDeletedEvent creates a new SaleReturnDeletedEvent
func NewSaleReturnDeletedEvent(r *SaleReturn) *SaleReturnDeletedEvent {
	return &SaleReturnDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnDeleted, AggregateTypeSaleReturn, r.ID, r.TenantID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		CustomerID:      r.CustomerID,
	}
}
