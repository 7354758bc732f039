package persistence

import (
	"context"
	"testing"

	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupLedgerDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func setupLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(tenantID, code, "Customer "+code)
	require.NoError(t, err)
	require.NoError(t, db.Create(models.CustomerModelFromDomain(customer)).Error)
	return customer
}

func seedSale(t *testing.T, db *gorm.DB, tenantID, customerID uuid.UUID, invoice string, qty, price int64) *trade.Sale {
	t.Helper()
	total := decimal.NewFromInt(qty * price)
	sale, err := trade.NewSale(tenantID, customerID, uuid.New(), invoice, total, []trade.SaleItemInput{
		{ProductID: uuid.New(), ProductName: "Chair", Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)},
	})
	require.NoError(t, err)
	require.NoError(t, NewGormSaleRepository(db).Create(context.Background(), sale))
	return sale
}

// planReturn plans a return of qty units of the sale's first line
func planReturn(t *testing.T, sale *trade.Sale, number string, qty int64, status trade.ReturnStatus) *trade.SaleReturn {
	t.Helper()
	sr, err := trade.NewReturnPlanner().Plan(sale, nil, nil, trade.ReturnRequest{
		ReturnNumber:    number,
		RestoreStock:    true,
		RequireApproval: true,
		Lines:           []trade.ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: decimal.NewFromInt(qty)}},
	})
	require.NoError(t, err)
	sr.Status = status
	return sr
}
