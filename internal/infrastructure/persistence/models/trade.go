package models

import (
	"time"

	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate
type SaleModel struct {
	TenantAggregateModel
	InvoiceNumber string          `gorm:"type:varchar(50);not null;index"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsDeleted     bool            `gorm:"not null;default:false"`
	DeletedAt     *time.Time
	Items         []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one invoiced line
type SaleItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(200)"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ConversionToBase decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain Sale
func (m *SaleModel) ToDomain() *trade.Sale {
	sale := &trade.Sale{
		TenantAggregateRoot: m.tenantRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		CustomerID:          m.CustomerID,
		BranchID:            m.BranchID,
		GrandTotal:          m.GrandTotal,
		IsDeleted:           m.IsDeleted,
		DeletedAt:           m.DeletedAt,
		Items:               make([]trade.SaleItem, len(m.Items)),
	}
	for i, item := range m.Items {
		sale.Items[i] = trade.SaleItem{
			ID:               item.ID,
			SaleID:           item.SaleID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			ConversionToBase: item.ConversionToBase,
		}
	}
	return sale
}

// SaleModelFromDomain creates a persistence model from a domain Sale
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		BranchID:      s.BranchID,
		GrandTotal:    s.GrandTotal,
		IsDeleted:     s.IsDeleted,
		DeletedAt:     s.DeletedAt,
		Items:         make([]SaleItemModel, len(s.Items)),
	}
	m.fromTenantRoot(s.TenantAggregateRoot)
	for i, item := range s.Items {
		m.Items[i] = SaleItemModel{
			ID:               item.ID,
			SaleID:           s.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			ConversionToBase: item.ConversionToBase,
		}
	}
	return m
}

// SaleReturnModel is the persistence model for the SaleReturn aggregate
type SaleReturnModel struct {
	TenantAggregateModel
	ReturnNumber        string                `gorm:"type:varchar(50);not null;index"`
	SaleID              uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	BranchID            uuid.UUID             `gorm:"type:uuid;not null"`
	Subtotal            decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	VatTotal            decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Discount            decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status              trade.ReturnStatus    `gorm:"type:varchar(20);not null;index"`
	ReturnType          trade.ReturnType      `gorm:"type:varchar(20);not null"`
	ReturnCategory      *trade.ReturnCategory `gorm:"type:varchar(20)"`
	RestoreStock        bool                  `gorm:"not null"`
	IsBadItem           bool                  `gorm:"not null;default:false"`
	Reason              string                `gorm:"type:text"`
	CreditNoteRequested bool                  `gorm:"not null;default:false"`
	ApprovedBy          *uuid.UUID            `gorm:"type:uuid"`
	ApprovedAt          *time.Time
	ApprovalNote        string     `gorm:"type:text"`
	RejectedBy          *uuid.UUID `gorm:"type:uuid"`
	RejectedAt          *time.Time
	RejectionReason     string                `gorm:"type:text"`
	Items               []SaleReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleReturnModel) TableName() string {
	return "sale_returns"
}

// SaleReturnItemModel is one line of a sale return
type SaleReturnItemModel struct {
	ID               uuid.UUID            `gorm:"type:uuid;primary_key"`
	ReturnID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	SaleItemID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID            `gorm:"type:uuid;not null"`
	ProductName      string               `gorm:"type:varchar(200)"`
	Quantity         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	ConversionToBase decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:1"`
	LineSubtotal     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	LineVat          decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Condition        *trade.ItemCondition `gorm:"type:varchar(20)"`
	StockEffect      bool                 `gorm:"not null;default:false"`
	DamageCategoryID *uuid.UUID           `gorm:"type:uuid"`
	Reason           string               `gorm:"type:text"`
	CreatedAt        time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleReturnItemModel) TableName() string {
	return "sale_return_items"
}

// ToDomain converts the persistence model to a domain SaleReturn
func (m *SaleReturnModel) ToDomain() *trade.SaleReturn {
	sr := &trade.SaleReturn{
		TenantAggregateRoot: m.tenantRoot(),
		ReturnNumber:        m.ReturnNumber,
		SaleID:              m.SaleID,
		CustomerID:          m.CustomerID,
		BranchID:            m.BranchID,
		Subtotal:            m.Subtotal,
		VatTotal:            m.VatTotal,
		Discount:            m.Discount,
		GrandTotal:          m.GrandTotal,
		Status:              m.Status,
		ReturnType:          m.ReturnType,
		ReturnCategory:      m.ReturnCategory,
		RestoreStock:        m.RestoreStock,
		IsBadItem:           m.IsBadItem,
		Reason:              m.Reason,
		CreditNoteRequested: m.CreditNoteRequested,
		ApprovedBy:          m.ApprovedBy,
		ApprovedAt:          m.ApprovedAt,
		ApprovalNote:        m.ApprovalNote,
		RejectedBy:          m.RejectedBy,
		RejectedAt:          m.RejectedAt,
		RejectionReason:     m.RejectionReason,
		Items:               make([]trade.SaleReturnItem, len(m.Items)),
	}
	for i, item := range m.Items {
		sr.Items[i] = trade.SaleReturnItem{
			ID:               item.ID,
			ReturnID:         item.ReturnID,
			SaleItemID:       item.SaleItemID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			ConversionToBase: item.ConversionToBase,
			LineSubtotal:     item.LineSubtotal,
			LineVat:          item.LineVat,
			LineTotal:        item.LineTotal,
			Condition:        item.Condition,
			StockEffect:      item.StockEffect,
			DamageCategoryID: item.DamageCategoryID,
			Reason:           item.Reason,
			CreatedAt:        item.CreatedAt,
		}
	}
	return sr
}

// SaleReturnModelFromDomain creates a persistence model from a domain SaleReturn
func SaleReturnModelFromDomain(sr *trade.SaleReturn) *SaleReturnModel {
	m := &SaleReturnModel{
		ReturnNumber:        sr.ReturnNumber,
		SaleID:              sr.SaleID,
		CustomerID:          sr.CustomerID,
		BranchID:            sr.BranchID,
		Subtotal:            sr.Subtotal,
		VatTotal:            sr.VatTotal,
		Discount:            sr.Discount,
		GrandTotal:          sr.GrandTotal,
		Status:              sr.Status,
		ReturnType:          sr.ReturnType,
		ReturnCategory:      sr.ReturnCategory,
		RestoreStock:        sr.RestoreStock,
		IsBadItem:           sr.IsBadItem,
		Reason:              sr.Reason,
		CreditNoteRequested: sr.CreditNoteRequested,
		ApprovedBy:          sr.ApprovedBy,
		ApprovedAt:          sr.ApprovedAt,
		ApprovalNote:        sr.ApprovalNote,
		RejectedBy:          sr.RejectedBy,
		RejectedAt:          sr.RejectedAt,
		RejectionReason:     sr.RejectionReason,
		Items:               make([]SaleReturnItemModel, len(sr.Items)),
	}
	m.fromTenantRoot(sr.TenantAggregateRoot)
	for i, item := range sr.Items {
		m.Items[i] = SaleReturnItemModel{
			ID:               item.ID,
			ReturnID:         sr.ID,
			SaleItemID:       item.SaleItemID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			ConversionToBase: item.ConversionToBase,
			LineSubtotal:     item.LineSubtotal,
			LineVat:          item.LineVat,
			LineTotal:        item.LineTotal,
			Condition:        item.Condition,
			StockEffect:      item.StockEffect,
			DamageCategoryID: item.DamageCategoryID,
			Reason:           item.Reason,
			CreatedAt:        item.CreatedAt,
		}
	}
	return m
}
