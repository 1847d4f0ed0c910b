package cart

import (
	"github.com/example/tg-storefront/internal/money"
	"github.com/shopspring/decimal"
)

// LineUnits is the number of single pieces on the line.
func LineUnits(l Line) int {
	return money.Units(l.Packs, l.Product.Normalized().PiecesPerPack)
}

// LineSubtotal is units × price per unit. A zero or absent price gives zero.
func LineSubtotal(l Line) decimal.Decimal {
	p := l.Product.Normalized()
	return money.Subtotal(p.PricePerUnit, l.Packs, p.PiecesPerPack)
}

// Total sums the subtotals of all lines without rounding.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineSubtotal(l))
	}
	return total
}

// ItemCount counts packs, not pieces.
func ItemCount(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Packs
	}
	return count
}

func totalsOf(lines []Line) Totals {
	return Totals{
		Total:      Total(lines),
		ItemsCount: ItemCount(lines),
		Lines:      len(lines),
	}
}
