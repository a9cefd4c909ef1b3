package calc

import "github.com/shopspring/decimal"

func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal is quantity * unit price, rounded to cents.
func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
}

func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round2(total)
}
