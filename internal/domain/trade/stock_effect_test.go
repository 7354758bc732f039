package trade

import (
	"testing"

	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
)

func TestStockEffectChain_Resolve(t *testing.T) {
	chain := DefaultStockEffectChain()
	resaleable := &inventory.DamageCategory{AffectsStock: true, IsResaleable: true}
	scrap := &inventory.DamageCategory{AffectsStock: true, IsResaleable: false}

	tests := []struct {
		name     string
		in       StockEffectInput
		expected bool
	}{
		{"resellable condition restores", StockEffectInput{Condition: condition(ConditionResellable)}, true},
		{"damaged condition beats explicit true", StockEffectInput{Condition: condition(ConditionDamaged), StockEffect: boolPtr(true)}, false},
		{"write-off condition never restores", StockEffectInput{Condition: condition(ConditionWriteOff), RestoreStock: true}, false},
		{"explicit flag beats category", StockEffectInput{StockEffect: boolPtr(false), DamageCategory: resaleable}, false},
		{"resaleable category restores", StockEffectInput{DamageCategory: resaleable}, true},
		{"non-resaleable category does not restore", StockEffectInput{DamageCategory: scrap, RestoreStock: true}, false},
		{"return default restores", StockEffectInput{RestoreStock: true}, true},
		{"bad item blocks return default", StockEffectInput{RestoreStock: true, IsBadItem: true}, false},
		{"nothing set does not restore", StockEffectInput{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chain.Resolve(tt.in))
		})
	}

	t.Run("empty chain does not restore", func(t *testing.T) {
		assert.False(t, StockEffectChain{}.Resolve(StockEffectInput{RestoreStock: true}))
	})
}
