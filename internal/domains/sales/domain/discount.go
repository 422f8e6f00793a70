package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrQuantityLimit rejects quantities above the 20-unit ceiling.
var ErrQuantityLimit = errors.New("cannot sell more than 20 identical items")

// Quantity-based discount tiers: below 4 units no discount, 4 to 9 units
// 10%, 10 to 20 units 20%, above 20 units the sale is refused.
var (
	tierTenPercent    = decimal.NewFromInt(4)
	tierTwentyPercent = decimal.NewFromInt(10)
	maxItemQuantity   = decimal.NewFromInt(20)

	rateTenPercent    = decimal.RequireFromString("0.10")
	rateTwentyPercent = decimal.RequireFromString("0.20")
)

// ItemDiscount returns the discount prescribed by the tier table for the
// given quantity and unit price.
func ItemDiscount(quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case quantity.GreaterThan(maxItemQuantity):
		return decimal.Zero, ErrQuantityLimit
	case quantity.GreaterThanOrEqual(tierTwentyPercent):
		return quantity.Mul(unitPrice).Mul(rateTwentyPercent), nil
	case quantity.GreaterThanOrEqual(tierTenPercent):
		return quantity.Mul(unitPrice).Mul(rateTenPercent), nil
	default:
		return decimal.Zero, nil
	}
}

// ApplyDiscount writes the tier-table discount and the resulting total
// amount onto the item. It must run before Validate: validation checks
// discount-vs-quantity consistency against the same table.
func (i *SaleItem) ApplyDiscount() error {
	discount, err := ItemDiscount(i.Quantity, i.UnitPrice)
	if err != nil {
		return err
	}
	i.Discount = discount
	i.TotalAmount = i.Quantity.Mul(i.UnitPrice).Sub(discount)
	return nil
}
