package order

import "github.com/shopspring/decimal"

const CurrencySymbol = "€"

// CalculateTotal sums price*quantity with float accumulation, which is what
// gets stored on Order.Total.
func CalculateTotal(items []OrderItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// ExactTotal is the decimal counterpart of CalculateTotal used for display.
func ExactTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it))
	}
	return total
}

func LineTotal(it OrderItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// FormatAmount rounds half away from zero to two places.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func FormatPrice(v float64) string {
	return CurrencySymbol + FormatAmount(v)
}

func FormatDecimal(d decimal.Decimal) string {
	return CurrencySymbol + d.StringFixed(2)
}
