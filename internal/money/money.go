package money

import (
	"github.com/shopspring/decimal"
)

// CurrencySign is appended to every rendered amount.
const CurrencySign = "₽"

// Units returns the number of single pieces in packs of the given size.
func Units(packs, piecesPerPack int) int {
	return packs * piecesPerPack
}

// Subtotal returns price × packs × piecesPerPack. A zero price gives zero.
func Subtotal(pricePerUnit decimal.Decimal, packs, piecesPerPack int) decimal.Decimal {
	return pricePerUnit.Mul(decimal.NewFromInt(int64(Units(packs, piecesPerPack))))
}

// Sum adds up amounts without rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatRub renders an amount in whole roubles, e.g. "180₽".
// Rounding happens here and nowhere else.
func FormatRub(amount decimal.Decimal) string {
	return amount.Round(0).String() + CurrencySign
}

// RoundPrice rounds a unit price to kopecks for catalog cards.
// Trailing zeros are dropped, so 12.50 renders as "12.5".
func RoundPrice(price decimal.Decimal) string {
	if price.IsZero() {
		return "0"
	}
	return price.Round(2).String()
}
