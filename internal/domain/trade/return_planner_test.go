package trade

import (
	"errors"
	"testing"

	"github.com/erp/reconciler/internal/domain/inventory"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func condition(c ItemCondition) *ItemCondition {
	return &c
}

func boolPtr(b bool) *bool {
	return &b
}

// newTestSale creates a sale with two lines: 10 x 100 and 5 x 200
func newTestSale(t *testing.T) *Sale {
	t.Helper()
	sale, err := NewSale(uuid.New(), uuid.New(), uuid.New(), "INV-0001", dec("2100"), []SaleItemInput{
		{ProductID: uuid.New(), ProductName: "Widget", Quantity: dec("10"), UnitPrice: dec("100"), ConversionToBase: dec("1")},
		{ProductID: uuid.New(), ProductName: "Gadget", Quantity: dec("5"), UnitPrice: dec("200"), ConversionToBase: dec("12")},
	})
	require.NoError(t, err)
	return sale
}

func TestReturnPlanner_Plan(t *testing.T) {
	planner := NewReturnPlanner()

	t.Run("prices a partial return with VAT", func(t *testing.T) {
		sale := newTestSale(t)
		sr, err := planner.Plan(sale, nil, nil, ReturnRequest{
			ReturnNumber: "SR-1",
			Lines:        []ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: dec("2")}},
			RestoreStock: true,
		})
		require.NoError(t, err)

		assert.True(t, sr.Subtotal.Equal(dec("200")))
		assert.True(t, sr.VatTotal.Equal(dec("10")))
		assert.True(t, sr.GrandTotal.Equal(dec("210")))
		assert.Equal(t, ReturnTypePartial, sr.ReturnType)
		assert.Equal(t, ReturnStatusApproved, sr.Status)
		assert.NotNil(t, sr.ApprovedAt)
		assert.Equal(t, sale.CustomerID, sr.CustomerID)
		assert.Equal(t, sale.BranchID, sr.BranchID)
		require.Len(t, sr.Items, 1)
		assert.True(t, sr.Items[0].StockEffect)
		assert.True(t, sr.Items[0].LineTotal.Equal(dec("210")))
		assert.Len(t, sr.GetDomainEvents(), 1)
	})

	t.Run("returning everything that remains is a full return", func(t *testing.T) {
		sale := newTestSale(t)
		sr, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines: []ReturnLineRequest{
				{SaleItemID: sale.Items[0].ID, Quantity: dec("10")},
				{SaleItemID: sale.Items[1].ID, Quantity: dec("5")},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, ReturnTypeFull, sr.ReturnType)
		assert.True(t, sr.GrandTotal.Equal(dec("2100")))
	})

	t.Run("remaining quantity after prior returns can still be full", func(t *testing.T) {
		sale := newTestSale(t)
		prior := map[uuid.UUID]decimal.Decimal{sale.Items[0].ID: dec("4"), sale.Items[1].ID: dec("1")}
		sr, err := planner.Plan(sale, prior, nil, ReturnRequest{
			Lines: []ReturnLineRequest{
				{SaleItemID: sale.Items[0].ID, Quantity: dec("6")},
				{SaleItemID: sale.Items[1].ID, Quantity: dec("4")},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, ReturnTypeFull, sr.ReturnType)
	})

	t.Run("fully returned sale is rejected", func(t *testing.T) {
		sale := newTestSale(t)
		prior := map[uuid.UUID]decimal.Decimal{sale.Items[0].ID: dec("10"), sale.Items[1].ID: dec("5")}
		_, err := planner.Plan(sale, prior, nil, ReturnRequest{
			Lines: []ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: dec("1")}},
		})
		assert.True(t, errors.Is(err, shared.ErrAlreadyFullyReturned))
	})

	t.Run("quantity above remaining names the line", func(t *testing.T) {
		sale := newTestSale(t)
		prior := map[uuid.UUID]decimal.Decimal{sale.Items[1].ID: dec("3")}
		_, err := planner.Plan(sale, prior, nil, ReturnRequest{
			Lines: []ReturnLineRequest{
				{SaleItemID: sale.Items[0].ID, Quantity: dec("1")},
				{SaleItemID: sale.Items[1].ID, Quantity: dec("3")},
			},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))
		assert.Contains(t, err.Error(), "Line 2 (Gadget)")
	})

	t.Run("duplicate lines share the remaining quantity", func(t *testing.T) {
		sale := newTestSale(t)
		_, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines: []ReturnLineRequest{
				{SaleItemID: sale.Items[1].ID, Quantity: dec("3")},
				{SaleItemID: sale.Items[1].ID, Quantity: dec("3")},
			},
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))
	})

	t.Run("zero quantity is invalid", func(t *testing.T) {
		sale := newTestSale(t)
		_, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines: []ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: decimal.Zero}},
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))
	})

	t.Run("no lines is invalid input", func(t *testing.T) {
		_, err := planner.Plan(newTestSale(t), nil, nil, ReturnRequest{})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("unknown sale item is not found", func(t *testing.T) {
		sale := newTestSale(t)
		_, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines: []ReturnLineRequest{{SaleItemID: uuid.New(), Quantity: dec("1")}},
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("damage category outside the tenant is not found", func(t *testing.T) {
		sale := newTestSale(t)
		foreign := uuid.New()
		_, err := planner.Plan(sale, nil, map[uuid.UUID]*inventory.DamageCategory{}, ReturnRequest{
			Lines: []ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: dec("1"), DamageCategoryID: &foreign}},
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("discount reduces the grand total", func(t *testing.T) {
		sale := newTestSale(t)
		sr, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines:    []ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: dec("2")}},
			Discount: dec("10"),
		})
		require.NoError(t, err)
		assert.True(t, sr.GrandTotal.Equal(dec("200")))
	})

	t.Run("discount above subtotal plus VAT is invalid", func(t *testing.T) {
		sale := newTestSale(t)
		_, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines:    []ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: dec("2")}},
			Discount: dec("211"),
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("approval requirement leaves the return pending", func(t *testing.T) {
		sale := newTestSale(t)
		sr, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines:           []ReturnLineRequest{{SaleItemID: sale.Items[0].ID, Quantity: dec("1")}},
			RequireApproval: true,
		})
		require.NoError(t, err)
		assert.Equal(t, ReturnStatusPending, sr.Status)
		assert.Nil(t, sr.ApprovedAt)
	})

	t.Run("condition overrides explicit stock effect", func(t *testing.T) {
		sale := newTestSale(t)
		sr, err := planner.Plan(sale, nil, nil, ReturnRequest{
			Lines: []ReturnLineRequest{{
				SaleItemID:  sale.Items[0].ID,
				Quantity:    dec("1"),
				Condition:   condition(ConditionDamaged),
				StockEffect: boolPtr(true),
			}},
		})
		require.NoError(t, err)
		assert.False(t, sr.Items[0].StockEffect)
		assert.Equal(t, DispositionDamaged, sr.ItemDisposition(&sr.Items[0]))
		require.NotNil(t, sr.ReturnCategory)
		assert.Equal(t, ReturnCategoryDamaged, *sr.ReturnCategory)
	})
}

func TestDeriveReturnCategory(t *testing.T) {
	item := func(c *ItemCondition) SaleReturnItem {
		return SaleReturnItem{Condition: c}
	}

	tests := []struct {
		name     string
		items    []SaleReturnItem
		expected *ReturnCategory
	}{
		{"no conditions", []SaleReturnItem{item(nil), item(nil)}, nil},
		{"write-off wins", []SaleReturnItem{item(condition(ConditionDamaged)), item(condition(ConditionWriteOff))}, ptrCategory(ReturnCategoryWriteOff)},
		{"damaged beats resellable", []SaleReturnItem{item(condition(ConditionResellable)), item(condition(ConditionDamaged))}, ptrCategory(ReturnCategoryDamaged)},
		{"uniformly resellable", []SaleReturnItem{item(condition(ConditionResellable)), item(condition(ConditionResellable))}, ptrCategory(ReturnCategoryResellable)},
		{"mixed resellable and unspecified", []SaleReturnItem{item(condition(ConditionResellable)), item(nil)}, ptrCategory(ReturnCategoryNotLiked)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveReturnCategory(tt.items))
		})
	}
}

func ptrCategory(c ReturnCategory) *ReturnCategory {
	return &c
}

func TestPriceLine(t *testing.T) {
	subtotal, vat, total := PriceLine(dec("3"), dec("33.33"))
	assert.True(t, subtotal.Equal(dec("99.99")))
	assert.True(t, vat.Equal(dec("5")))
	assert.True(t, total.Equal(dec("104.99")))
}

func TestReturnableLines(t *testing.T) {
	sale := newTestSale(t)
	lines := ReturnableLines(sale, map[uuid.UUID]decimal.Decimal{sale.Items[0].ID: dec("7")})
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Returnable.Equal(dec("3")))
	assert.True(t, lines[1].Returnable.Equal(dec("5")))
}
