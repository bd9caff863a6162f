package core

import "math"

// Signal is a trading call to be backtested. It is never mutated by the
// engine; evaluation produces a separate result.
type Signal struct {
	TokenID      string  // provider-specific identifier, e.g. "bitcoin"
	EntryPrice   float64 // price at signal creation
	TargetPrice1 float64 // TP1
	TargetPrice2 float64 // TP2
	StopLoss     float64
	Timestamp    string // raw, see timestamp.Normalize
}

// IsNumeric reports whether the fields read by the exit simulation (entry,
// TP1, stop-loss) are finite and the entry price is positive. TP2 is
// carried for reporting only and is not checked.
func (s Signal) IsNumeric() bool {
	for _, v := range []float64{s.EntryPrice, s.TargetPrice1, s.StopLoss} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return s.EntryPrice > 0
}

// PricePoint is one observation of a price series.
type PricePoint struct {
	Time  int64 // epoch milliseconds
	Price float64
}

// PriceSeries is ordered ascending by Time as delivered by the provider.
// It is never re-sorted.
type PriceSeries []PricePoint

// Since returns the points with Time >= ts, preserving order. The result
// shares the receiver's backing array.
func (s PriceSeries) Since(ts int64) PriceSeries {
	for i, p := range s {
		if p.Time >= ts {
			return s[i:]
		}
	}
	return nil
}

// Last returns the final point of the series.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}
