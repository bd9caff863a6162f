package backtest

import (
	"encoding/json"

	"github.com/newthinker/sigtrail/internal/core"
)

// Outcome tags which variant a Result holds.
type Outcome string

const (
	OutcomeEvaluated    Outcome = "evaluated"
	OutcomeNotAvailable Outcome = "not_available"
)

// Reason explains a not-available result.
type Reason string

const (
	ReasonProviderUnavailable Reason = "provider_unavailable"
	ReasonInvalidTimestamp    Reason = "invalid_timestamp"
	ReasonEmptySeries         Reason = "empty_series"
	ReasonInvalidSignal       Reason = "invalid_signal"
	ReasonOutOfBand           Reason = "out_of_band"
)

// ExitRule names the rule that produced an evaluated exit price.
type ExitRule string

const (
	ExitStopLoss     ExitRule = "stop_loss"
	ExitTrailingStop ExitRule = "trailing_stop"
	ExitLastPrice    ExitRule = "last_price"
)

// Result is either Evaluated (exit price and P&L) or NotAvailable (reason).
// The zero value is not a valid Result; use the constructors.
type Result struct {
	outcome    Outcome
	exitPrice  float64
	pnlPercent float64
	rule       ExitRule
	reason     Reason
}

// Evaluated builds a successful result.
func Evaluated(exitPrice, pnlPercent float64, rule ExitRule) Result {
	return Result{
		outcome:    OutcomeEvaluated,
		exitPrice:  exitPrice,
		pnlPercent: pnlPercent,
		rule:       rule,
	}
}

// NotAvailable builds a result for a signal that could not be simulated.
func NotAvailable(reason Reason) Result {
	return Result{outcome: OutcomeNotAvailable, reason: reason}
}

// Outcome returns the variant tag.
func (r Result) Outcome() Outcome { return r.outcome }

// Available reports whether r is Evaluated.
func (r Result) Available() bool { return r.outcome == OutcomeEvaluated }

// Values returns the exit price and P&L percent. ok is false for
// not-available results, in which case both numbers are zero.
func (r Result) Values() (exitPrice, pnlPercent float64, ok bool) {
	if !r.Available() {
		return 0, 0, false
	}
	return r.exitPrice, r.pnlPercent, true
}

// Rule returns the exit rule of an evaluated result.
func (r Result) Rule() ExitRule { return r.rule }

// Reason returns why the result is not available; empty when evaluated.
func (r Result) Reason() Reason { return r.reason }

// MarshalJSON renders the presentation form of the result.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Outcome   Outcome  `json:"outcome"`
		ExitPrice string   `json:"exit_price"`
		PnL       string   `json:"p_and_l"`
		Rule      ExitRule `json:"exit_rule,omitempty"`
		Reason    Reason   `json:"reason,omitempty"`
	}{
		Outcome:   r.outcome,
		ExitPrice: r.ExitPriceString(),
		PnL:       r.PnLString(),
		Rule:      r.rule,
		Reason:    r.reason,
	}
	return json.Marshal(out)
}

// Evaluation pairs an input signal with its result.
type Evaluation struct {
	Signal core.Signal
	Result Result
}
