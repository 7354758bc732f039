package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDriftDetector_CheckCustomer(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	tests := []struct {
		name    string
		stored  string
		drifted bool
	}{
		{"in sync", "0", false},
		{"within tolerance", "0.005", false},
		{"exactly at tolerance", "0.01", false},
		{"beyond tolerance", "0.02", true},
		{"large negative drift", "-150", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := testutil.NewMockTransactionScope()
			detector := NewDriftDetector(scope, NewService(scope))
			customer := newCustomer(t, tenantID, "C1", decimal.RequireFromString(tt.stored))
			scope.Repos.CustomerRepo.On("FindByID", mock.Anything, tenantID, customer.ID).Return(customer, nil)
			scope.Repos.LedgerRepo.On("LoadTotals", mock.Anything, tenantID, customer.ID).Return(scenarioTotals(), nil)

			result, err := detector.CheckCustomer(ctx, tenantID, customer.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.drifted, result.Drifted)
			assert.True(t, result.Computed.IsZero())
			if tt.drifted {
				assert.True(t, errors.Is(result.Err(), shared.ErrDriftDetected))
			} else {
				assert.NoError(t, result.Err())
			}
			scope.Repos.CustomerRepo.AssertNotCalled(t, "SaveBalances", mock.Anything, mock.Anything)
		})
	}
}

func TestDriftDetector_RepairCustomer(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("repairs drifted customer", func(t *testing.T) {
		scope := testutil.NewMockTransactionScope()
		detector := NewDriftDetector(scope, NewService(scope))
		customer := newCustomer(t, tenantID, "C1", decimal.NewFromInt(40))
		scope.Repos.CustomerRepo.On("FindByID", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		scope.Repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		scope.Repos.LedgerRepo.On("LoadTotals", mock.Anything, tenantID, customer.ID).Return(scenarioTotals(), nil)
		scope.Repos.CustomerRepo.On("SaveBalances", mock.Anything, customer).Return(nil)

		result, err := detector.RepairCustomer(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.True(t, result.Drifted)
		assert.True(t, result.Repaired)
		assert.True(t, result.Stored.Equal(decimal.NewFromInt(40)))
		assert.True(t, customer.PendingBalance.IsZero())
	})

	t.Run("leaves healthy customer untouched", func(t *testing.T) {
		scope := testutil.NewMockTransactionScope()
		detector := NewDriftDetector(scope, NewService(scope))
		customer := newCustomer(t, tenantID, "C1", decimal.Zero)
		scope.Repos.CustomerRepo.On("FindByID", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		scope.Repos.LedgerRepo.On("LoadTotals", mock.Anything, tenantID, customer.ID).Return(scenarioTotals(), nil)

		result, err := detector.RepairCustomer(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.False(t, result.Repaired)
		scope.Repos.CustomerRepo.AssertNotCalled(t, "SaveBalances", mock.Anything, mock.Anything)
	})
}

func TestDriftDetector_Tenant(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	setup := func(t *testing.T) (*testutil.MockTransactionScope, *DriftDetector) {
		scope := testutil.NewMockTransactionScope()
		detector := NewDriftDetector(scope, NewService(scope, WithWorkers(2)))

		healthy := newCustomer(t, tenantID, "A", decimal.NewFromInt(100))
		driftedB := newCustomer(t, tenantID, "B", decimal.NewFromInt(90))
		driftedC := newCustomer(t, tenantID, "C", decimal.NewFromInt(130))
		totals := finance.LedgerTotals{TotalSales: decimal.NewFromInt(100)}
		for _, c := range []*partner.Customer{healthy, driftedB, driftedC} {
			scope.Repos.CustomerRepo.On("FindByID", mock.Anything, tenantID, c.ID).Return(c, nil)
			scope.Repos.CustomerRepo.On("FindByIDForUpdate", mock.Anything, tenantID, c.ID).Return(c, nil)
			scope.Repos.LedgerRepo.On("LoadTotals", mock.Anything, tenantID, c.ID).Return(totals, nil)
		}
		scope.Repos.CustomerRepo.On("ListIDs", mock.Anything, tenantID).
			Return([]uuid.UUID{healthy.ID, driftedB.ID, driftedC.ID}, nil)
		return scope, detector
	}

	t.Run("validate reports drifted customers in code order", func(t *testing.T) {
		scope, detector := setup(t)

		report, err := detector.ValidateTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, 3, report.CustomersChecked)
		require.Len(t, report.Drifted, 2)
		assert.Equal(t, "B", report.Drifted[0].CustomerCode)
		assert.Equal(t, "C", report.Drifted[1].CustomerCode)
		assert.True(t, report.TotalDrift.Equal(decimal.NewFromInt(40)))
		assert.Zero(t, report.Repaired)
		scope.Repos.CustomerRepo.AssertNotCalled(t, "SaveBalances", mock.Anything, mock.Anything)
	})

	t.Run("repair recalculates only drifted customers", func(t *testing.T) {
		scope, detector := setup(t)
		scope.Repos.CustomerRepo.On("SaveBalances", mock.Anything, mock.Anything).Return(nil)

		report, err := detector.RepairTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Repaired)
		assert.Empty(t, report.Failures)
		scope.Repos.CustomerRepo.AssertNumberOfCalls(t, "SaveBalances", 2)

		after, err := detector.ValidateTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.False(t, after.HasDrift())
	})

	t.Run("repair records failures and continues", func(t *testing.T) {
		scope, detector := setup(t)
		scope.Repos.CustomerRepo.On("SaveBalances", mock.Anything, mock.Anything).Return(errors.New("deadlock detected")).Once()
		scope.Repos.CustomerRepo.On("SaveBalances", mock.Anything, mock.Anything).Return(nil)

		report, err := detector.RepairTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Repaired)
		require.Len(t, report.Failures, 1)
		assert.Contains(t, report.Failures[0].Error, "deadlock detected")
	})
}
