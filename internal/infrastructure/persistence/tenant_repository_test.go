package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/reconciler/internal/domain/identity"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTenantRepository_FindActiveIDs(t *testing.T) {
	ctx := context.Background()
	db := setupLedgerDB(t)
	repo := NewGormTenantRepository(db)

	active, err := identity.NewTenant("acme", "Acme")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, active))
	inactive, err := identity.NewTenant("gone", "Gone Ltd")
	require.NoError(t, err)
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repo.Save(ctx, inactive))

	ids, err := repo.FindActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{active.ID}, ids)

	found, err := repo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", found.Code)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormTenantSettingRepository(t *testing.T) {
	ctx := context.Background()
	db := setupLedgerDB(t)
	tenantID := uuid.New()
	repo := NewGormTenantSettingRepository(db)

	_, ok, err := repo.Get(ctx, tenantID, trade.SettingReturnsEnabled)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, tenantID, trade.SettingReturnsEnabled, "false"))
	require.NoError(t, repo.Set(ctx, tenantID, trade.SettingReturnsEnabled, "true"))

	value, ok, err := repo.Get(ctx, tenantID, trade.SettingReturnsEnabled)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	_, ok, err = repo.Get(ctx, uuid.New(), trade.SettingReturnsEnabled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReturnSettingsProvider(t *testing.T) {
	ctx := context.Background()
	db := setupLedgerDB(t)
	settings := NewGormTenantSettingRepository(db)
	provider := NewReturnSettingsProvider(settings, trade.DefaultReturnSettings())

	t.Run("unset tenant gets the defaults", func(t *testing.T) {
		got, err := provider.ReturnSettings(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, trade.ReturnSettings{Enabled: true, RequireApproval: false}, got)
	})

	t.Run("stored values win", func(t *testing.T) {
		tenantID := uuid.New()
		require.NoError(t, settings.Set(ctx, tenantID, trade.SettingReturnsEnabled, "false"))
		require.NoError(t, settings.Set(ctx, tenantID, trade.SettingReturnsRequireApproval, " TRUE "))

		got, err := provider.ReturnSettings(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, trade.ReturnSettings{Enabled: false, RequireApproval: true}, got)
	})

	t.Run("unparsable value falls back", func(t *testing.T) {
		tenantID := uuid.New()
		require.NoError(t, settings.Set(ctx, tenantID, trade.SettingReturnsRequireApproval, "sometimes"))

		custom := NewReturnSettingsProvider(settings, trade.ReturnSettings{Enabled: true, RequireApproval: true})
		got, err := custom.ReturnSettings(ctx, tenantID)
		require.NoError(t, err)
		assert.True(t, got.RequireApproval)
	})
}
