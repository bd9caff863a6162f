package backtest

import (
	"math"

	"github.com/shopspring/decimal"
)

// NotAvailableMarker is rendered in place of numbers for not-available results.
const NotAvailableMarker = "N/A"

const (
	priceDecimals = 6
	pnlDecimals   = 2
)

// ExitPriceString formats the exit price with six decimals.
func (r Result) ExitPriceString() string {
	exit, _, ok := r.Values()
	if !ok || !finite(exit) {
		return NotAvailableMarker
	}
	return decimal.NewFromFloat(exit).StringFixed(priceDecimals)
}

// PnLString formats the P&L with two decimals and a % suffix, e.g. "-10.00%".
func (r Result) PnLString() string {
	_, pnl, ok := r.Values()
	if !ok || !finite(pnl) {
		return NotAvailableMarker
	}
	return decimal.NewFromFloat(pnl).StringFixed(pnlDecimals) + "%"
}

// finite reports whether f can be represented as a decimal.
func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
