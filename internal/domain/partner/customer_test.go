package partner

import (
	"testing"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates customer with zero aggregates", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, "cust001", "Test Customer")

		require.NoError(t, err)
		assert.Equal(t, "CUST001", customer.Code)
		assert.Equal(t, tenantID, customer.TenantID)
		assert.True(t, customer.PendingBalance.IsZero())
		assert.True(t, customer.Balance.IsZero())
		assert.Nil(t, customer.BalanceRecalculatedAt)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewCustomer(tenantID, " ", "Test Customer")
		assert.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewCustomer(tenantID, "C1", "")
		assert.Error(t, err)
	})
}

func TestCustomer_ApplyLedgerTotals(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "C1", "Acme")
	require.NoError(t, err)

	totals := finance.LedgerTotals{
		TotalSales:    decimal.NewFromInt(1000),
		TotalPayments: decimal.NewFromInt(1000),
		TotalReturns:  decimal.NewFromInt(200),
	}

	t.Run("overwrites every aggregate", func(t *testing.T) {
		changed := customer.ApplyLedgerTotals(totals)

		assert.True(t, changed)
		assert.True(t, customer.TotalSales.Equal(decimal.NewFromInt(1000)))
		assert.True(t, customer.TotalPayments.Equal(decimal.NewFromInt(1000)))
		assert.True(t, customer.PendingBalance.Equal(decimal.NewFromInt(-200)))
		assert.True(t, customer.Balance.Equal(customer.PendingBalance))
		assert.NotNil(t, customer.BalanceRecalculatedAt)
		assert.True(t, customer.IsInCredit())
		require.Len(t, customer.GetDomainEvents(), 1)
		event := customer.GetDomainEvents()[0].(*CustomerBalanceRecalculatedEvent)
		assert.True(t, event.Delta().Equal(decimal.NewFromInt(-200)))
	})

	t.Run("reapplying same totals is idempotent", func(t *testing.T) {
		customer.ClearDomainEvents()
		changed := customer.ApplyLedgerTotals(totals)

		assert.False(t, changed)
		assert.True(t, customer.PendingBalance.Equal(decimal.NewFromInt(-200)))
		assert.Empty(t, customer.GetDomainEvents())
	})

	t.Run("drift is measured against stored value", func(t *testing.T) {
		totals.RefundsPaid = decimal.NewFromInt(200)
		drift := customer.DriftFrom(totals)
		assert.True(t, drift.Exceeded())
		assert.True(t, drift.Stored.Equal(decimal.NewFromInt(-200)))
		assert.True(t, drift.Computed.IsZero())
	})
}

func TestCustomer_AvailableCredit(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "C1", "Acme")
	require.NoError(t, err)

	assert.True(t, customer.AvailableCredit().IsZero())

	require.NoError(t, customer.SetCreditLimit(decimal.NewFromInt(500)))
	customer.ApplyLedgerTotals(finance.LedgerTotals{TotalSales: decimal.NewFromInt(300)})
	assert.True(t, customer.AvailableCredit().Equal(decimal.NewFromInt(200)))

	assert.Error(t, customer.SetCreditLimit(decimal.NewFromInt(-1)))
}
