package persistence

import (
	"context"
	"testing"

	"github.com/erp/reconciler/internal/application/balance"
	tradeapp "github.com/erp/reconciler/internal/application/trade"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type approvalRequiredSettings struct{}

func (approvalRequiredSettings) ReturnSettings(context.Context, uuid.UUID) (trade.ReturnSettings, error) {
	return trade.ReturnSettings{Enabled: true, RequireApproval: true}, nil
}

// setupCreditNoteFKDB enforces foreign keys and recreates credit_notes with the
// production reference to sale_returns.
func setupCreditNoteFKDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := setupLedgerDB(t)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.Migrator().DropTable(&models.CreditNoteModel{}))
	require.NoError(t, db.Exec(`CREATE TABLE credit_notes (
		id                 UUID PRIMARY KEY,
		tenant_id          UUID          NOT NULL,
		created_by         UUID,
		credit_note_number VARCHAR(50)   NOT NULL,
		customer_id        UUID          NOT NULL,
		sale_id            UUID          NOT NULL,
		sale_return_id     UUID          NOT NULL REFERENCES sale_returns (id),
		amount             DECIMAL(18,4) NOT NULL,
		status             VARCHAR(20)   NOT NULL,
		refund_payment_id  UUID,
		refunded_at        DATETIME,
		applied_at         DATETIME,
		version            INTEGER       NOT NULL DEFAULT 1,
		created_at         DATETIME      NOT NULL,
		updated_at         DATETIME      NOT NULL
	)`).Error)
	return db
}

func TestSaleReturnCreditNote_ForeignKeys(t *testing.T) {
	ctx := context.Background()
	db := setupCreditNoteFKDB(t)
	tenantID, actorID := uuid.New(), uuid.New()
	customer := seedCustomer(t, db, tenantID, "C1")

	product, err := inventory.NewProduct(tenantID, "P-1", "Chair", decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(ctx, product))
	sale, err := trade.NewSale(tenantID, customer.ID, uuid.New(), "INV-1", decimal.NewFromInt(500), []trade.SaleItemInput{
		{ProductID: product.ID, ProductName: product.Name, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	require.NoError(t, NewGormSaleRepository(db).Create(ctx, sale))
	paid, err := finance.NewPayment(tenantID, customer.ID, decimal.NewFromInt(500), finance.PaymentStatusCleared)
	require.NoError(t, err)
	paid.LinkSale(sale.ID)
	require.NoError(t, NewGormPaymentRepository(db).Save(ctx, paid))

	scope := NewGormTransactionScope(db)
	svc := tradeapp.NewSaleReturnService(scope, balance.NewService(scope), approvalRequiredSettings{})
	createPending := func(t *testing.T) *tradeapp.SaleReturnResponse {
		t.Helper()
		resp, err := svc.CreateSaleReturn(ctx, tenantID, tradeapp.CreateSaleReturnRequest{
			SaleID:            sale.ID,
			Items:             []tradeapp.CreateSaleReturnItemRequest{{SaleItemID: sale.Items[0].ID, Quantity: decimal.NewFromInt(1)}},
			RequestCreditNote: true,
			CreatedBy:         actorID,
		})
		require.NoError(t, err)
		require.Equal(t, "PENDING", resp.Status)
		assert.Nil(t, resp.CreditNoteID)
		return resp
	}
	notes := func(t *testing.T) int64 {
		t.Helper()
		var n int64
		require.NoError(t, db.Model(&models.CreditNoteModel{}).Count(&n).Error)
		return n
	}

	t.Run("pending return with a requested note deletes cleanly", func(t *testing.T) {
		resp := createPending(t)
		require.NoError(t, svc.DeleteSaleReturn(ctx, tenantID, resp.ID, actorID))
		assert.Zero(t, notes(t))
	})

	t.Run("rejected return keeps no note", func(t *testing.T) {
		resp := createPending(t)
		_, err := svc.RejectSaleReturn(ctx, tenantID, resp.ID, actorID, tradeapp.RejectSaleReturnRequest{Reason: "opened"})
		require.NoError(t, err)
		assert.Zero(t, notes(t))
	})

	t.Run("approval issues the note against the stored return", func(t *testing.T) {
		resp := createPending(t)
		approved, err := svc.ApproveSaleReturn(ctx, tenantID, resp.ID, actorID, tradeapp.ApproveSaleReturnRequest{})
		require.NoError(t, err)
		require.NotNil(t, approved.CreditNoteID)

		var note models.CreditNoteModel
		require.NoError(t, db.Where("id = ?", *approved.CreditNoteID).First(&note).Error)
		assert.Equal(t, resp.ID, note.SaleReturnID)
		assert.True(t, note.Amount.Equal(approved.GrandTotal), "note %s, return %s", note.Amount, approved.GrandTotal)
	})
}
