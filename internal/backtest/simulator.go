package backtest

import (
	"math"

	"github.com/newthinker/sigtrail/internal/core"
)

// TrailingRetrace is the pullback from the running peak, as a fraction,
// that closes a position once TP1 has been reached.
const TrailingRetrace = 0.01

// Simulate runs the trailing-stop exit policy for sig over series, which
// must already be restricted to points at or after the signal time.
//
// The scan keeps a running peak (starting at the entry price). At each
// point the stop-loss is checked first; reaching TP1 arms the trailing
// stop; once armed, a new high raises the peak and a retrace of
// TrailingRetrace or more from the peak exits at that price. If nothing
// triggers, the last price in the series is the exit.
func Simulate(sig core.Signal, series core.PriceSeries) Result {
	if !sig.IsNumeric() {
		return NotAvailable(ReasonInvalidSignal)
	}
	last, ok := series.Last()
	if !ok {
		return NotAvailable(ReasonEmptySeries)
	}

	entry, tp1, sl := sig.EntryPrice, sig.TargetPrice1, sig.StopLoss
	if entry > tp1 || entry < sl {
		return NotAvailable(ReasonOutOfBand)
	}

	exit, rule := last.Price, ExitLastPrice
	peak := entry
	tp1Hit := false

	for _, p := range series {
		price := p.Price
		if price <= sl {
			exit, rule = sl, ExitStopLoss
			break
		}

		if price >= tp1 {
			tp1Hit = true
		}

		if tp1Hit {
			if price > peak {
				peak = price
			} else if price <= peak*(1-TrailingRetrace) {
				exit, rule = price, ExitTrailingStop
				break
			}
		}
	}

	pnl := (exit - entry) / entry * 100
	// A subnormal entry can overflow the percentage.
	if math.IsInf(pnl, 0) || math.IsNaN(pnl) {
		return NotAvailable(ReasonInvalidSignal)
	}
	return Evaluated(exit, pnl, rule)
}
