package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigtrail/internal/app"
	"github.com/newthinker/sigtrail/internal/report"
	"github.com/newthinker/sigtrail/internal/signals"
)

var (
	backtestInput  string
	backtestCTxbt  bool
	backtestAPIKey string
	backtestCSV    string
	backtestExport bool
	backtestJSON   bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a batch of signals",
	Long: `Evaluate each signal against the configured price providers and print the
exit price and P&L. Signals come from a JSON file (--input) or the ctxbt API
(--ctxbt).`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringVarP(&backtestInput, "input", "i", "", "JSON file with signals (array or {\"data\": [...]})")
	backtestCmd.Flags().BoolVar(&backtestCTxbt, "ctxbt", false, "fetch signals from the ctxbt API")
	backtestCmd.Flags().StringVar(&backtestAPIKey, "api-key", "", "ctxbt API key (overrides signals.ctxbt.api_key)")
	backtestCmd.Flags().StringVar(&backtestCSV, "csv", "", "write the CSV report to this file")
	backtestCmd.Flags().BoolVar(&backtestExport, "export", false, "write the CSV report to the configured export sink")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "print augmented records as JSON instead of a table")

	backtestCmd.MarkFlagsMutuallyExclusive("input", "ctxbt")
	backtestCmd.MarkFlagsOneRequired("input", "ctxbt")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	var src signals.Source
	if backtestCTxbt {
		ctxbtCfg := cfg.Signals.CTxbt
		if backtestAPIKey != "" {
			ctxbtCfg.APIKey = backtestAPIKey
		}
		src, err = signals.NewCTxbt(ctxbtCfg)
		if err != nil {
			return err
		}
	} else {
		src = signals.NewFileSource(backtestInput)
	}

	if backtestExport && cfg.Export.Type == "" {
		return fmt.Errorf("--export needs export.type in the config")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := a.FetchAndProcess(ctx, src, backtestExport)
	if err != nil {
		return err
	}

	log.Debug("backtest complete",
		zap.Int("signals", run.Stats.TotalSignals),
		zap.Duration("duration", run.Duration),
	)

	rows, err := run.Rows()
	if err != nil {
		return err
	}

	if backtestCSV != "" {
		if err := writeCSVFile(backtestCSV, rows); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if backtestJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run.Augmented); err != nil {
			return err
		}
	} else if err := report.WriteTable(out, rows, run.Stats); err != nil {
		return err
	}

	if backtestCSV != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "CSV written to %s\n", backtestCSV)
	}
	if run.ReportPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report exported to %s\n", run.ReportPath)
	}
	return nil
}

func writeCSVFile(path string, rows []report.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := report.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
