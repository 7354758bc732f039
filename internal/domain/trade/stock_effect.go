package trade

import (
	"github.com/erp/reconciler/internal/domain/inventory"
)

// StockEffectInput carries everything a resolver may consult for one return line
type StockEffectInput struct {
	Condition      *ItemCondition
	StockEffect    *bool
	DamageCategory *inventory.DamageCategory
	RestoreStock   bool // return-level default
	IsBadItem      bool // return-level default
}

// StockEffectResolver decides whether a line restores stock.
// ok is false when the resolver has no opinion and the next one should be consulted.
type StockEffectResolver func(in StockEffectInput) (restore bool, ok bool)

// StockEffectChain consults resolvers in order; the first decisive one wins
type StockEffectChain []StockEffectResolver

// DefaultStockEffectChain returns the standard precedence:
// line condition, explicit flag, damage category, return default.
func DefaultStockEffectChain() StockEffectChain {
	return StockEffectChain{
		ResolveByCondition,
		ResolveByExplicitFlag,
		ResolveByDamageCategory,
		ResolveByReturnDefault,
	}
}

// Resolve runs the chain. A chain with no decisive resolver does not restore stock.
func (c StockEffectChain) Resolve(in StockEffectInput) bool {
	for _, resolve := range c {
		if restore, ok := resolve(in); ok {
			return restore
		}
	}
	return false
}

// ResolveByCondition restores stock only for resellable goods
func ResolveByCondition(in StockEffectInput) (bool, bool) {
	if in.Condition == nil {
		return false, false
	}
	return *in.Condition == ConditionResellable, true
}

// ResolveByExplicitFlag honors a caller-supplied stock effect
func ResolveByExplicitFlag(in StockEffectInput) (bool, bool) {
	if in.StockEffect == nil {
		return false, false
	}
	return *in.StockEffect, true
}

// ResolveByDamageCategory follows the category policy
func ResolveByDamageCategory(in StockEffectInput) (bool, bool) {
	if in.DamageCategory == nil {
		return false, false
	}
	return in.DamageCategory.RestoresStock(), true
}

// ResolveByReturnDefault always decides, from the return-level flags
func ResolveByReturnDefault(in StockEffectInput) (bool, bool) {
	return in.RestoreStock && !in.IsBadItem, true
}
