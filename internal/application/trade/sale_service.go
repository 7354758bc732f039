package trade

import (
	"context"
	"fmt"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const auditEntitySale = "sale"

// SaleService records invoiced sales against the ledger
type SaleService struct {
	scope     uow.TransactionScope
	balances  uow.BalanceRecalculator
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(scope uow.TransactionScope, balances uow.BalanceRecalculator, publisher shared.EventPublisher, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		scope:     scope,
		balances:  balances,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateSale records a sale, takes its quantities out of stock and
// recalculates the customer's balance
func (s *SaleService) CreateSale(ctx context.Context, tenantID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	items := make([]trade.SaleItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = trade.SaleItemInput{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			ConversionToBase: item.ConversionToBase,
		}
	}

	sale, err := trade.NewSale(tenantID, req.CustomerID, req.BranchID, req.InvoiceNumber, req.GrandTotal, items)
	if err != nil {
		return nil, err
	}
	sale.SetCreatedBy(req.CreatedBy)

	var events uow.EventCollector
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		// The customer must exist in the tenant before anything is written
		if _, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, sale.CustomerID); err != nil {
			return err
		}

		if err := repos.Sales().Create(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			baseQty := inventory.ToBaseUnits(item.Quantity, item.ConversionToBase)
			if err := repos.Products().AdjustStock(ctx, tenantID, item.ProductID, baseQty.Neg()); err != nil {
				return fmt.Errorf("failed to deduct stock for %s: %w", item.ProductName, err)
			}
			branchID := sale.BranchID
			movement, err := inventory.NewInventoryTransaction(
				tenantID, item.ProductID, &branchID, inventory.TransactionTypeSaleOut, baseQty.Neg(),
				inventory.SourceTypeSale, sale.ID,
			)
			if err != nil {
				return err
			}
			if err := repos.InventoryTransactions().Create(ctx, movement.WithSourceLine(item.ID)); err != nil {
				return fmt.Errorf("failed to record inventory transaction: %w", err)
			}
		}

		customer, err := s.balances.RecalculateInTx(ctx, repos, tenantID, sale.CustomerID)
		if err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntitySale, sale.ID, shared.AuditActionCreate, req.CreatedBy, map[string]any{
			"invoice_number": sale.InvoiceNumber,
			"grand_total":    sale.GrandTotal,
		})
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		events.Collect(sale, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("sale recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_number", sale.InvoiceNumber),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// SoftDeleteSale removes a sale from the customer's TotalSales. Stock taken
// out by the sale is not put back; returns are the path for goods that come back.
func (s *SaleService) SoftDeleteSale(ctx context.Context, tenantID, saleID, actorID uuid.UUID) error {
	var events uow.EventCollector
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		sale, err := repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := sale.SoftDelete(); err != nil {
			return err
		}
		if err := repos.Sales().MarkDeleted(ctx, sale); err != nil {
			return err
		}

		customer, err := s.balances.RecalculateInTx(ctx, repos, tenantID, sale.CustomerID)
		if err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntitySale, sale.ID, shared.AuditActionDelete, actorID, nil)
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		events.Collect(sale, customer)
		return nil
	})
	if err != nil {
		return err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("sale deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", saleID.String()),
	)
	return nil
}
