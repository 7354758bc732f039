package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/reconciler/internal/application/balance"
	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCustomerRepository_FindByIDForUpdateSQL(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	tenantID, customerID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE .*tenant_id.* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "pending_balance"}).
			AddRow(customerID.String(), tenantID.String(), "C1", "Customer C1", "42"))

	customer, err := NewGormCustomerRepository(gormDB).FindByIDForUpdate(context.Background(), tenantID, customerID)
	require.NoError(t, err)
	assert.Equal(t, customerID, customer.ID)
	assert.True(t, customer.PendingBalance.Equal(decimal.NewFromInt(42)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_FindByIDSQL(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	tenantID, customerID := uuid.New(), uuid.New()

	// Plain reads never lock
	mock.ExpectQuery(`^SELECT \* FROM "customers" WHERE [^;]*LIMIT \$3$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name"}).
			AddRow(customerID.String(), tenantID.String(), "C1", "Customer C1"))

	_, err := NewGormCustomerRepository(gormDB).FindByID(context.Background(), tenantID, customerID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_FindByIDForUpdate(t *testing.T) {
	ctx := context.Background()
	db := setupLedgerDB(t)
	tenantID := uuid.New()
	customer := seedCustomer(t, db, tenantID, "C1")
	repo := NewGormCustomerRepository(db)

	t.Run("loads inside a transaction", func(t *testing.T) {
		err := NewGormTransactionScope(db).Execute(ctx, func(repos uow.Repositories) error {
			found, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, customer.ID)
			if err != nil {
				return err
			}
			assert.Equal(t, "C1", found.Code)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("customer of another tenant is not found", func(t *testing.T) {
		_, err := repo.FindByIDForUpdate(ctx, uuid.New(), customer.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

// The stored balance depends only on the committed ledger rows, not on the
// order in which a sale and an unrelated payment were recorded.
func TestRecalculation_OrderIndependent(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	record := func(t *testing.T, paymentFirst bool) decimal.Decimal {
		t.Helper()
		db := setupLedgerDB(t)
		customer := seedCustomer(t, db, tenantID, "C1")
		scope := NewGormTransactionScope(db)
		balances := balance.NewService(scope)

		recordSale := func(repos uow.Repositories) error {
			sale, err := trade.NewSale(tenantID, customer.ID, uuid.New(), "INV-1", decimal.NewFromInt(700), []trade.SaleItemInput{
				{ProductID: uuid.New(), ProductName: "Desk", Quantity: decimal.NewFromInt(7), UnitPrice: decimal.NewFromInt(100)},
			})
			if err != nil {
				return err
			}
			return repos.Sales().Create(ctx, sale)
		}
		recordPayment := func(repos uow.Repositories) error {
			payment, err := finance.NewPayment(tenantID, customer.ID, decimal.NewFromInt(250), finance.PaymentStatusCleared)
			if err != nil {
				return err
			}
			return repos.Payments().Save(ctx, payment)
		}

		steps := []func(uow.Repositories) error{recordSale, recordPayment}
		if paymentFirst {
			steps[0], steps[1] = steps[1], steps[0]
		}
		for _, step := range steps {
			err := scope.Execute(ctx, func(repos uow.Repositories) error {
				if err := step(repos); err != nil {
					return err
				}
				_, err := balances.RecalculateInTx(ctx, repos, tenantID, customer.ID)
				return err
			})
			require.NoError(t, err)
		}

		stored, err := NewGormCustomerRepository(db).FindByID(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		return stored.PendingBalance
	}

	saleFirst := record(t, false)
	paymentFirst := record(t, true)
	assert.True(t, saleFirst.Equal(decimal.NewFromInt(450)), "sale first %s", saleFirst)
	assert.True(t, paymentFirst.Equal(saleFirst), "payment first %s, sale first %s", paymentFirst, saleFirst)
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
