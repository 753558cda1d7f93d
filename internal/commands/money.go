package commands

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd formats a dollar amount with grouping, e.g. "$1,234.50".
func usd(d decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	minor := d.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}
