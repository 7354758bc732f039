package trade

import (
	"context"

	"github.com/google/uuid"
)

// Tenant setting keys read by the return lifecycle
const (
	SettingReturnsEnabled         = "Returns_Enabled"
	SettingReturnsRequireApproval = "Returns_RequireApproval"
)

// ReturnSettings controls return behavior for a tenant
type ReturnSettings struct {
	Enabled         bool
	RequireApproval bool
}

// DefaultReturnSettings applies when a tenant has not configured returns
func DefaultReturnSettings() ReturnSettings {
	return ReturnSettings{Enabled: true, RequireApproval: false}
}

// ReturnSettingsProvider resolves a tenant's return settings
type ReturnSettingsProvider interface {
	ReturnSettings(ctx context.Context, tenantID uuid.UUID) (ReturnSettings, error)
}
