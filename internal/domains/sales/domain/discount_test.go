package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestItemDiscount_BelowFirstTier(t *testing.T) {
	discount, err := ItemDiscount(decimal.NewFromInt(3), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, discount.IsZero(), "quantities below 4 carry no discount, got %s", discount)
}

func TestItemDiscount_TenPercentTier(t *testing.T) {
	for _, quantity := range []int64{4, 5, 9} {
		discount, err := ItemDiscount(decimal.NewFromInt(quantity), decimal.NewFromInt(10))
		require.NoError(t, err)
		expected := decimal.NewFromInt(quantity).Mul(decimal.NewFromInt(10)).Mul(decimal.RequireFromString("0.10"))
		require.True(t, discount.Equal(expected), "quantity %d: got %s want %s", quantity, discount, expected)
	}
}

func TestItemDiscount_TwentyPercentTier(t *testing.T) {
	for _, quantity := range []int64{10, 15, 20} {
		discount, err := ItemDiscount(decimal.NewFromInt(quantity), decimal.NewFromInt(10))
		require.NoError(t, err)
		expected := decimal.NewFromInt(quantity).Mul(decimal.NewFromInt(10)).Mul(decimal.RequireFromString("0.20"))
		require.True(t, discount.Equal(expected), "quantity %d: got %s want %s", quantity, discount, expected)
	}
}

func TestItemDiscount_AboveCeiling(t *testing.T) {
	_, err := ItemDiscount(decimal.NewFromInt(21), decimal.NewFromInt(10))
	require.ErrorIs(t, err, ErrQuantityLimit)
}

func TestApplyDiscount_WritesDiscountAndTotal(t *testing.T) {
	cases := []struct {
		quantity int64
		discount string
		total    string
	}{
		{3, "0", "30"},
		{5, "5", "45"},
		{15, "30", "120"},
	}
	for _, tc := range cases {
		item := SaleItem{
			Product:   "Keyboard",
			Quantity:  decimal.NewFromInt(tc.quantity),
			UnitPrice: decimal.NewFromInt(10),
		}
		require.NoError(t, item.ApplyDiscount())
		require.True(t, item.Discount.Equal(decimal.RequireFromString(tc.discount)),
			"quantity %d: discount %s want %s", tc.quantity, item.Discount, tc.discount)
		require.True(t, item.TotalAmount.Equal(decimal.RequireFromString(tc.total)),
			"quantity %d: total %s want %s", tc.quantity, item.TotalAmount, tc.total)
	}
}

func TestApplyDiscount_RejectsQuantityAboveCeiling(t *testing.T) {
	item := SaleItem{
		Product:   "Keyboard",
		Quantity:  decimal.NewFromInt(21),
		UnitPrice: decimal.NewFromInt(10),
	}
	require.ErrorIs(t, item.ApplyDiscount(), ErrQuantityLimit)
}
