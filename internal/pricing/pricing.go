// Package pricing holds the fixed-point money arithmetic shared by checkout
// and seller statistics. Amounts are shopspring decimals rounded to cents.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/flicky/go-marketplace-api/internal/model"
)

const Scale = 2

// Round rounds half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// CartTotal prices every line at the product's current price.
func CartTotal(items []model.CartItemDetail) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it.Product.Price, it.Quantity))
	}
	return Round(total)
}

// Revenue sums quantity × frozen price over order lines.
func Revenue(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it.Price, it.Quantity))
	}
	return Round(total)
}

// ValidPrice reports whether p is non-negative with at most two decimals.
func ValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.Equal(p.Truncate(Scale))
}
