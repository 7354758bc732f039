package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/reconciler/internal/domain/identity"
	"github.com/erp/reconciler/internal/domain/trade"
	"github.com/google/uuid"
)

// ReturnSettingsProvider resolves a tenant's return settings from the
// tenant_settings table, falling back to configured defaults for unset or
// unparsable values. Settings are read on every call.
type ReturnSettingsProvider struct {
	settings identity.TenantSettingRepository
	defaults trade.ReturnSettings
}

// NewReturnSettingsProvider creates a provider over the settings store
func NewReturnSettingsProvider(settings identity.TenantSettingRepository, defaults trade.ReturnSettings) *ReturnSettingsProvider {
	return &ReturnSettingsProvider{settings: settings, defaults: defaults}
}

// ReturnSettings implements trade.ReturnSettingsProvider
func (p *ReturnSettingsProvider) ReturnSettings(ctx context.Context, tenantID uuid.UUID) (trade.ReturnSettings, error) {
	enabled, err := p.flag(ctx, tenantID, trade.SettingReturnsEnabled, p.defaults.Enabled)
	if err != nil {
		return trade.ReturnSettings{}, err
	}
	requireApproval, err := p.flag(ctx, tenantID, trade.SettingReturnsRequireApproval, p.defaults.RequireApproval)
	if err != nil {
		return trade.ReturnSettings{}, err
	}
	return trade.ReturnSettings{Enabled: enabled, RequireApproval: requireApproval}, nil
}

func (p *ReturnSettingsProvider) flag(ctx context.Context, tenantID uuid.UUID, key string, fallback bool) (bool, error) {
	raw, ok, err := p.settings.Get(ctx, tenantID, key)
	if err != nil {
		return false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback, nil
	}
	return value, nil
}

var _ trade.ReturnSettingsProvider = (*ReturnSettingsProvider)(nil)
