package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var euro = accounting.Accounting{Symbol: "€", Precision: 2, Thousand: " ", Decimal: ",", Format: "%v %s"}

// Euro renders an amount the French way, e.g. "1 234,50 €".
func Euro(amount decimal.Decimal) string {
	return euro.FormatMoney(amount.Round(2).InexactFloat64())
}
