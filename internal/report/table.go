package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/newthinker/sigtrail/internal/backtest"
)

// WriteTable prints a human-readable result table followed by the summary.
func WriteTable(out io.Writer, rows []Row, stats backtest.Stats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTOKEN\tENTRY\tTP1\tSL\tEXIT\tP&L\tRULE/REASON")
	for i, row := range rows {
		sig := row.Record.Signal
		detail := string(row.Result.Rule())
		if !row.Result.Available() {
			detail = string(row.Result.Reason())
		}
		fmt.Fprintf(w, "%d\t%s\t%g\t%g\t%g\t%s\t%s\t%s\n",
			i+1, sig.TokenID, sig.EntryPrice, sig.TargetPrice1, sig.StopLoss,
			row.Result.ExitPriceString(), row.Result.PnLString(), detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Signals:       %d (%d evaluated, %d N/A)\n", stats.TotalSignals, stats.Evaluated, stats.NotAvailable)
	fmt.Fprintf(out, "Win rate:      %.2f%% (%d won, %d lost)\n", stats.WinRate, stats.WinningTrades, stats.LosingTrades)
	fmt.Fprintf(out, "Average P&L:   %.2f%%\n", stats.AveragePnL)
	fmt.Fprintf(out, "Total P&L:     %.2f%%\n", stats.TotalPnL)
	fmt.Fprintf(out, "Best / worst:  %.2f%% / %.2f%%\n", stats.BestPnL, stats.WorstPnL)
	_, err := fmt.Fprintf(out, "Max drawdown:  %.2f%%\n", stats.MaxDrawdown)
	return err
}
