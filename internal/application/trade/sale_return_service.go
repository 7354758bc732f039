package trade

import (
	"context"
	"fmt"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const auditEntitySaleReturn = "sale_return"

// SaleReturnService handles the sale return lifecycle. Every mutation runs in
// a single transaction that ends with the customer balance recalculation.
type SaleReturnService struct {
	scope     uow.TransactionScope
	balances  uow.BalanceRecalculator
	settings  trade.ReturnSettingsProvider
	planner   *trade.ReturnPlanner
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// SaleReturnServiceOption configures a SaleReturnService
type SaleReturnServiceOption func(*SaleReturnService)

// WithReturnEventPublisher sets the publisher used after commit
func WithReturnEventPublisher(publisher shared.EventPublisher) SaleReturnServiceOption {
	return func(s *SaleReturnService) {
		s.publisher = publisher
	}
}

// WithReturnLogger sets the logger
func WithReturnLogger(logger *zap.Logger) SaleReturnServiceOption {
	return func(s *SaleReturnService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReturnPlanner replaces the default planner
func WithReturnPlanner(planner *trade.ReturnPlanner) SaleReturnServiceOption {
	return func(s *SaleReturnService) {
		if planner != nil {
			s.planner = planner
		}
	}
}

// NewSaleReturnService creates a new SaleReturnService
func NewSaleReturnService(
	scope uow.TransactionScope,
	balances uow.BalanceRecalculator,
	settings trade.ReturnSettingsProvider,
	opts ...SaleReturnServiceOption,
) *SaleReturnService {
	s := &SaleReturnService{
		scope:    scope,
		balances: balances,
		settings: settings,
		planner:  trade.NewReturnPlanner(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSaleReturn validates and records a return. When the tenant does not
// require approval the return is approved immediately and its stock, damage
// and write-off effects are applied in the same transaction. A requested
// credit note is issued only once the return is approved.
func (s *SaleReturnService) CreateSaleReturn(ctx context.Context, tenantID uuid.UUID, req CreateSaleReturnRequest) (*SaleReturnResponse, error) {
	settings, err := s.returnSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, shared.ErrReturnsDisabled
	}

	var (
		sr         *trade.SaleReturn
		creditNote *finance.CreditNote
		events     uow.EventCollector
	)
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		// Load the sale; soft-deleted sales cannot be returned against
		sale, err := repos.Sales().FindByID(ctx, tenantID, req.SaleID)
		if err != nil {
			return err
		}
		if sale.IsDeleted {
			return shared.NotFoundf("Sale %s not found", req.SaleID)
		}

		returned, err := repos.SaleReturns().ReturnedQuantities(ctx, tenantID, sale.ID)
		if err != nil {
			return fmt.Errorf("failed to load returned quantities: %w", err)
		}

		categories, err := s.loadDamageCategories(ctx, repos, tenantID, req.Items)
		if err != nil {
			return err
		}

		returnNumber, err := repos.SaleReturns().GenerateReturnNumber(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to generate return number: %w", err)
		}

		sr, err = s.planner.Plan(sale, returned, categories, toReturnRequest(returnNumber, req, settings))
		if err != nil {
			return err
		}

		if err := repos.SaleReturns().Create(ctx, sr); err != nil {
			return fmt.Errorf("failed to save sale return: %w", err)
		}

		var customer *partner.Customer
		if sr.IsApproved() {
			customer, err = s.applyApproval(ctx, repos, sr)
			if err != nil {
				return err
			}
			creditNote, err = s.requestedCreditNote(ctx, repos, sale, sr)
			if err != nil {
				return err
			}
		}

		entry := shared.NewAuditEntry(tenantID, auditEntitySaleReturn, sr.ID, shared.AuditActionCreate, req.CreatedBy, map[string]any{
			"return_number": sr.ReturnNumber,
			"sale_id":       sr.SaleID,
			"status":        sr.Status,
			"grand_total":   sr.GrandTotal,
			"line_count":    len(sr.Items),
		})
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		events.Collect(sr)
		if customer != nil {
			events.Collect(customer)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("sale return created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("return_id", sr.ID.String()),
		zap.String("return_number", sr.ReturnNumber),
		zap.String("status", sr.Status.String()),
		zap.String("grand_total", sr.GrandTotal.String()),
	)

	response := ToSaleReturnResponse(sr)
	if creditNote != nil {
		response.CreditNoteID = &creditNote.ID
	}
	return &response, nil
}

// ApproveSaleReturn approves a pending return, applies its effects and issues
// the credit note requested at creation
func (s *SaleReturnService) ApproveSaleReturn(ctx context.Context, tenantID, returnID, approverID uuid.UUID, req ApproveSaleReturnRequest) (*SaleReturnResponse, error) {
	var (
		sr         *trade.SaleReturn
		creditNote *finance.CreditNote
		events     uow.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		var err error
		sr, err = repos.SaleReturns().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if err := sr.Approve(approverID, req.Note); err != nil {
			return err
		}
		if err := repos.SaleReturns().UpdateStatus(ctx, sr); err != nil {
			return err
		}

		customer, err := s.applyApproval(ctx, repos, sr)
		if err != nil {
			return err
		}
		if creditNote, err = s.requestedCreditNote(ctx, repos, nil, sr); err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntitySaleReturn, sr.ID, shared.AuditActionApprove, approverID, map[string]any{
			"note": req.Note,
		})
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		events.Collect(sr, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("sale return approved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("return_id", sr.ID.String()),
		zap.String("approved_by", approverID.String()),
	)

	response := ToSaleReturnResponse(sr)
	if creditNote != nil {
		response.CreditNoteID = &creditNote.ID
	}
	return &response, nil
}

// RejectSaleReturn rejects a pending return. A rejected return has no stock,
// damage or expense effect but still counts against returnable quantities.
func (s *SaleReturnService) RejectSaleReturn(ctx context.Context, tenantID, returnID, rejecterID uuid.UUID, req RejectSaleReturnRequest) (*SaleReturnResponse, error) {
	var (
		sr     *trade.SaleReturn
		events uow.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		var err error
		sr, err = repos.SaleReturns().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if err := sr.Reject(rejecterID, req.Reason); err != nil {
			return err
		}
		if err := repos.SaleReturns().UpdateStatus(ctx, sr); err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntitySaleReturn, sr.ID, shared.AuditActionReject, rejecterID, map[string]any{
			"reason": req.Reason,
		})
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		events.Collect(sr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("sale return rejected",
		zap.String("tenant_id", tenantID.String()),
		zap.String("return_id", sr.ID.String()),
	)

	response := ToSaleReturnResponse(sr)
	return &response, nil
}

// DeleteSaleReturn removes a pending return. Approved and rejected returns
// are part of the ledger and cannot be deleted.
func (s *SaleReturnService) DeleteSaleReturn(ctx context.Context, tenantID, returnID, actorID uuid.UUID) error {
	var events uow.EventCollector
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		events.Reset()

		sr, err := repos.SaleReturns().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if err := sr.EnsureDeletable(); err != nil {
			return err
		}
		if err := repos.SaleReturns().Delete(ctx, tenantID, sr.ID); err != nil {
			return err
		}

		// Pending returns never entered TotalReturns, the recalculation only
		// keeps the stored aggregates honest
		customer, err := s.balances.RecalculateInTx(ctx, repos, tenantID, sr.CustomerID)
		if err != nil {
			return err
		}

		entry := shared.NewAuditEntry(tenantID, auditEntitySaleReturn, sr.ID, shared.AuditActionDelete, actorID, map[string]any{
			"return_number": sr.ReturnNumber,
		})
		if err := repos.AuditLogs().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		sr.AddDomainEvent(trade.NewSaleReturnDeletedEvent(sr))
		events.Collect(sr, customer)
		return nil
	})
	if err != nil {
		return err
	}

	events.Publish(ctx, s.publisher, s.logger)
	s.logger.Info("sale return deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("return_id", returnID.String()),
	)
	return nil
}

// GetSaleReturn retrieves a return by ID
func (s *SaleReturnService) GetSaleReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*SaleReturnResponse, error) {
	var sr *trade.SaleReturn
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		sr, err = repos.SaleReturns().FindByID(ctx, tenantID, returnID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSaleReturnResponse(sr)
	return &response, nil
}

// ListSaleReturns lists returns with filtering and pagination
func (s *SaleReturnService) ListSaleReturns(ctx context.Context, tenantID uuid.UUID, filter SaleReturnListFilter) (shared.Paginated[SaleReturnListItemResponse], error) {
	domainFilter := toReturnFilter(filter)

	var (
		returns []trade.SaleReturn
		total   int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		returns, total, err = repos.SaleReturns().FindAll(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return shared.Paginated[SaleReturnListItemResponse]{}, err
	}
	return shared.NewPaginated(ToSaleReturnListItemResponses(returns), total, domainFilter.Page, domainFilter.Limit()), nil
}

// GetReturnableQuantities reports, per sale item, how much can still be returned
func (s *SaleReturnService) GetReturnableQuantities(ctx context.Context, tenantID, saleID uuid.UUID) (*ReturnableResponse, error) {
	settings, err := s.returnSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var lines []trade.ReturnableLine
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if sale.IsDeleted {
			return shared.NotFoundf("Sale %s not found", saleID)
		}
		returned, err := repos.SaleReturns().ReturnedQuantities(ctx, tenantID, sale.ID)
		if err != nil {
			return fmt.Errorf("failed to load returned quantities: %w", err)
		}
		lines = trade.ReturnableLines(sale, returned)
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := &ReturnableResponse{
		SaleID:           saleID,
		FullyReturned:    true,
		Lines:            make([]ReturnableLineResponse, len(lines)),
		ReturnsEnabled:   settings.Enabled,
		RequiresApproval: settings.RequireApproval,
	}
	for i, line := range lines {
		if line.Returnable.IsPositive() {
			response.FullyReturned = false
		}
		response.Lines[i] = ReturnableLineResponse{
			SaleItemID:       line.SaleItemID,
			ProductID:        line.ProductID,
			ProductName:      line.ProductName,
			SoldQuantity:     line.SoldQuantity,
			ReturnedQuantity: line.ReturnedQuantity,
			Returnable:       line.Returnable,
			UnitPrice:        line.UnitPrice,
		}
	}
	return response, nil
}

// applyApproval applies the per-line effects of an approved return and
// recalculates the customer balance. It is shared by immediate approval on
// create and by ApproveSaleReturn so both paths produce identical ledgers.
func (s *SaleReturnService) applyApproval(ctx context.Context, repos uow.Repositories, sr *trade.SaleReturn) (*partner.Customer, error) {
	var writeOffCategory *finance.ExpenseCategory
	branchID := sr.BranchID

	for i := range sr.Items {
		item := &sr.Items[i]
		baseQty := item.BaseQuantity()

		switch sr.ItemDisposition(item) {
		case trade.DispositionRestock:
			if err := repos.Products().AdjustStock(ctx, sr.TenantID, item.ProductID, baseQty); err != nil {
				return nil, fmt.Errorf("failed to restock %s: %w", item.ProductName, err)
			}
			if err := s.recordMovement(ctx, repos, sr, item, inventory.TransactionTypeReturnIn, baseQty); err != nil {
				return nil, err
			}

		case trade.DispositionDamaged:
			if err := repos.DamageInventory().Upsert(ctx, sr.TenantID, item.ProductID, branchID, baseQty); err != nil {
				return nil, fmt.Errorf("failed to record damaged stock for %s: %w", item.ProductName, err)
			}
			if err := s.recordMovement(ctx, repos, sr, item, inventory.TransactionTypeDamageIn, baseQty); err != nil {
				return nil, err
			}

		case trade.DispositionWriteOff:
			if writeOffCategory == nil {
				category, err := repos.Expenses().FindOrCreateCategory(ctx, sr.TenantID, finance.ReturnWriteOffCategoryName)
				if err != nil {
					return nil, fmt.Errorf("failed to resolve write-off category: %w", err)
				}
				writeOffCategory = category
			}
			expense, err := finance.NewWriteOffExpense(
				sr.TenantID, writeOffCategory.ID, &branchID, sr.ID, item.LineTotal,
				fmt.Sprintf("Write-off %s x %s (return %s)", item.ProductName, item.Quantity, sr.ReturnNumber),
			)
			if err != nil {
				return nil, err
			}
			if err := repos.Expenses().Save(ctx, expense); err != nil {
				return nil, fmt.Errorf("failed to save write-off expense: %w", err)
			}
		}
	}

	return s.balances.RecalculateInTx(ctx, repos, sr.TenantID, sr.CustomerID)
}

func (s *SaleReturnService) recordMovement(
	ctx context.Context,
	repos uow.Repositories,
	sr *trade.SaleReturn,
	item *trade.SaleReturnItem,
	txType inventory.TransactionType,
	quantity decimal.Decimal,
) error {
	branchID := sr.BranchID
	movement, err := inventory.NewInventoryTransaction(
		sr.TenantID, item.ProductID, &branchID, txType, quantity,
		inventory.SourceTypeSaleReturn, sr.ID,
	)
	if err != nil {
		return err
	}
	movement.WithSourceLine(item.ID)
	if err := repos.InventoryTransactions().Create(ctx, movement); err != nil {
		return fmt.Errorf("failed to record inventory transaction: %w", err)
	}
	return nil
}

// requestedCreditNote issues the credit note asked for when the approved
// return was created. sale is loaded when nil.
func (s *SaleReturnService) requestedCreditNote(ctx context.Context, repos uow.Repositories, sale *trade.Sale, sr *trade.SaleReturn) (*finance.CreditNote, error) {
	if !sr.CreditNoteRequested {
		return nil, nil
	}
	if sale == nil {
		var err error
		if sale, err = repos.Sales().FindByID(ctx, sr.TenantID, sr.SaleID); err != nil {
			return nil, err
		}
	}
	return s.issueCreditNote(ctx, repos, sale, sr)
}

// issueCreditNote creates a credit note when the sale was fully paid before
// the return. Partially paid sales get no note; the return already reduces
// what the customer owes.
func (s *SaleReturnService) issueCreditNote(ctx context.Context, repos uow.Repositories, sale *trade.Sale, sr *trade.SaleReturn) (*finance.CreditNote, error) {
	if !sr.GrandTotal.IsPositive() {
		return nil, nil
	}
	collected, err := repos.Ledger().SumClearedCollectionsForSale(ctx, sale.TenantID, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale payments: %w", err)
	}
	if collected.LessThan(sale.GrandTotal) {
		s.logger.Debug("credit note skipped, sale not fully paid",
			zap.String("sale_id", sale.ID.String()),
			zap.String("collected", collected.String()),
			zap.String("grand_total", sale.GrandTotal.String()),
		)
		return nil, nil
	}

	number, err := repos.CreditNotes().GenerateNumber(ctx, sale.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate credit note number: %w", err)
	}
	note, err := finance.NewCreditNote(sale.TenantID, number, sr.CustomerID, sale.ID, sr.ID, sr.GrandTotal)
	if err != nil {
		return nil, err
	}
	if err := repos.CreditNotes().Save(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save credit note: %w", err)
	}
	return note, nil
}

func (s *SaleReturnService) loadDamageCategories(
	ctx context.Context,
	repos uow.Repositories,
	tenantID uuid.UUID,
	items []CreateSaleReturnItemRequest,
) (map[uuid.UUID]*inventory.DamageCategory, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, item := range items {
		if item.DamageCategoryID == nil {
			continue
		}
		if _, ok := seen[*item.DamageCategoryID]; ok {
			continue
		}
		seen[*item.DamageCategoryID] = struct{}{}
		ids = append(ids, *item.DamageCategoryID)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*inventory.DamageCategory{}, nil
	}
	categories, err := repos.DamageCategories().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load damage categories: %w", err)
	}
	return categories, nil
}

func (s *SaleReturnService) returnSettings(ctx context.Context, tenantID uuid.UUID) (trade.ReturnSettings, error) {
	if s.settings == nil {
		return trade.DefaultReturnSettings(), nil
	}
	settings, err := s.settings.ReturnSettings(ctx, tenantID)
	if err != nil {
		return trade.ReturnSettings{}, fmt.Errorf("failed to load return settings: %w", err)
	}
	return settings, nil
}

func toReturnRequest(returnNumber string, req CreateSaleReturnRequest, settings trade.ReturnSettings) trade.ReturnRequest {
	restore := true
	if req.RestoreStock != nil {
		restore = *req.RestoreStock
	}
	lines := make([]trade.ReturnLineRequest, len(req.Items))
	for i, item := range req.Items {
		var condition *trade.ItemCondition
		if item.Condition != nil {
			c := trade.ItemCondition(*item.Condition)
			condition = &c
		}
		lines[i] = trade.ReturnLineRequest{
			SaleItemID:       item.SaleItemID,
			Quantity:         item.Quantity,
			Condition:        condition,
			StockEffect:      item.StockEffect,
			DamageCategoryID: item.DamageCategoryID,
			Reason:           item.Reason,
		}
	}
	return trade.ReturnRequest{
		ReturnNumber:        returnNumber,
		Lines:               lines,
		Discount:            req.Discount,
		RestoreStock:        restore,
		IsBadItem:           req.IsBadItem,
		Reason:              req.Reason,
		CreditNoteRequested: req.RequestCreditNote,
		RequireApproval:     settings.RequireApproval,
		CreatedBy:           req.CreatedBy,
	}
}
