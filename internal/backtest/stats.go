package backtest

// Stats summarizes a batch of evaluations
type Stats struct {
	TotalSignals  int              `json:"total_signals"`
	Evaluated     int              `json:"evaluated"`
	NotAvailable  int              `json:"not_available"`
	ByReason      map[Reason]int   `json:"by_reason,omitempty"`
	ByRule        map[ExitRule]int `json:"by_rule,omitempty"`
	WinningTrades int              `json:"winning_trades"`
	LosingTrades  int              `json:"losing_trades"`
	WinRate       float64          `json:"win_rate"`     // percentage of evaluated signals with positive P&L
	AveragePnL    float64          `json:"average_pnl"`  // percent
	TotalPnL      float64          `json:"total_pnl"`    // sum of per-signal P&L percentages
	BestPnL       float64          `json:"best_pnl"`     // percent
	WorstPnL      float64          `json:"worst_pnl"`    // percent
	MaxDrawdown   float64          `json:"max_drawdown"` // percent, compounding evaluated signals in input order
}

// Summarize computes statistics over evals
func Summarize(evals []Evaluation) Stats {
	stats := Stats{TotalSignals: len(evals)}
	if len(evals) == 0 {
		return stats
	}

	var returns []float64
	for _, ev := range evals {
		_, pnl, ok := ev.Result.Values()
		if !ok {
			stats.NotAvailable++
			if stats.ByReason == nil {
				stats.ByReason = make(map[Reason]int)
			}
			stats.ByReason[ev.Result.Reason()]++
			continue
		}

		if stats.ByRule == nil {
			stats.ByRule = make(map[ExitRule]int)
		}
		stats.ByRule[ev.Result.Rule()]++

		if len(returns) == 0 || pnl > stats.BestPnL {
			stats.BestPnL = pnl
		}
		if len(returns) == 0 || pnl < stats.WorstPnL {
			stats.WorstPnL = pnl
		}

		returns = append(returns, pnl/100)
		stats.TotalPnL += pnl
		if pnl > 0 {
			stats.WinningTrades++
		} else {
			stats.LosingTrades++
		}
	}

	stats.Evaluated = len(returns)
	if stats.Evaluated > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.Evaluated) * 100
		stats.AveragePnL = stats.TotalPnL / float64(stats.Evaluated)
	}
	stats.MaxDrawdown = calculateMaxDrawdown(returns) * 100

	return stats
}

// calculateMaxDrawdown finds the largest peak-to-trough decline
func calculateMaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var maxDD float64
	peak := 1.0
	cumulative := 1.0

	for _, r := range returns {
		cumulative *= (1 + r)
		if cumulative > peak {
			peak = cumulative
		}
		if peak > 0 {
			dd := (peak - cumulative) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}
