package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/sigtrail/internal/backtest"
	"github.com/newthinker/sigtrail/internal/collector"
	"github.com/newthinker/sigtrail/internal/collector/binance"
	"github.com/newthinker/sigtrail/internal/collector/coingecko"
	"github.com/newthinker/sigtrail/internal/config"
	"github.com/newthinker/sigtrail/internal/export"
	"github.com/newthinker/sigtrail/internal/metrics"
	"github.com/newthinker/sigtrail/internal/pricecache"
	"github.com/newthinker/sigtrail/internal/report"
	"github.com/newthinker/sigtrail/internal/signals"
)

// Run is the outcome of processing one batch of signal records.
type Run struct {
	Records     []signals.Record
	Evaluations []backtest.Evaluation
	Augmented   []json.RawMessage
	Stats       backtest.Stats
	ReportPath  string
	Duration    time.Duration
}

// Rows pairs the run's records with their results for reporting.
func (r *Run) Rows() ([]report.Row, error) {
	return report.Rows(r.Records, r.Evaluations)
}

// App wires collectors, the evaluator and the export sink from config
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	collectors *collector.Registry
	chain      *collector.Chain
	evaluator  *backtest.Evaluator
	sink       export.Sink
	metrics    *metrics.Registry
}

// New creates an App. When cols is empty the collectors named by the
// config (coingecko, binance) are registered; otherwise cols replace them.
func New(cfg *config.Config, logger *zap.Logger, cols ...collector.Collector) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := collector.NewRegistry()
	if len(cols) == 0 {
		registry.Register(coingecko.New(cfg.Provider.CoinGecko))
		registry.Register(binance.New(cfg.Provider.Binance))
	}
	for _, c := range cols {
		registry.Register(c)
	}

	chain, err := registry.Chain(logger, cfg.Provider.Order...)
	if err != nil {
		return nil, fmt.Errorf("building provider chain: %w", err)
	}

	sink, err := export.New(cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("creating export sink: %w", err)
	}

	builder := pricecache.NewBuilder(chain, pricecache.Config{
		Concurrency: cfg.Backtest.FetchConcurrency,
	}, logger)

	return &App{
		cfg:        cfg,
		logger:     logger,
		collectors: registry,
		chain:      chain,
		evaluator:  backtest.NewEvaluator(builder, logger),
		sink:       sink,
	}, nil
}

// SetMetrics enables business metrics on the evaluator and price fetches
func (a *App) SetMetrics(reg *metrics.Registry) {
	a.metrics = reg
	a.evaluator.SetMetrics(reg)
}

// Metrics returns the registry set by SetMetrics, or nil.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Sink returns the configured export sink; nil when export is disabled.
func (a *App) Sink() export.Sink {
	return a.sink
}

// Process backtests records and augments each with exit_price and p_and_l.
// When exportReport is set and a sink is configured, the CSV report is
// written and its path recorded on the run.
func (a *App) Process(ctx context.Context, records []signals.Record, exportReport bool) (*Run, error) {
	start := time.Now()

	evals := a.evaluator.Evaluate(ctx, signals.Signals(records))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	augmented := make([]json.RawMessage, len(records))
	for i, rec := range records {
		res := evals[i].Result
		out, err := rec.Augment(res.ExitPriceString(), res.PnLString())
		if err != nil {
			return nil, fmt.Errorf("augmenting record %d: %w", i, err)
		}
		augmented[i] = out
	}

	run := &Run{
		Records:     records,
		Evaluations: evals,
		Augmented:   augmented,
		Stats:       backtest.Summarize(evals),
	}

	if exportReport && a.sink != nil {
		rows, err := run.Rows()
		if err != nil {
			return nil, err
		}
		path, err := report.Export(ctx, a.sink, rows)
		if err != nil {
			a.logger.Error("report export failed", zap.Error(err))
			return nil, err
		}
		run.ReportPath = path
		a.logger.Info("report exported", zap.String("path", path))
	}

	run.Duration = time.Since(start)
	return run, nil
}

// FetchAndProcess pulls a batch from src and processes it.
func (a *App) FetchAndProcess(ctx context.Context, src signals.Source, exportReport bool) (*Run, error) {
	records, err := src.FetchSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching signals from %s: %w", src.Name(), err)
	}
	a.logger.Info("signals fetched",
		zap.String("source", src.Name()),
		zap.Int("count", len(records)),
	)
	return a.Process(ctx, records, exportReport)
}

// GetStats returns application information for the health endpoint
func (a *App) GetStats() map[string]any {
	exportType := a.cfg.Export.Type
	if exportType == "" {
		exportType = "disabled"
	}
	return map[string]any{
		"collectors":        a.collectors.Names(),
		"provider_order":    a.cfg.Provider.Order,
		"fetch_concurrency": a.cfg.Backtest.FetchConcurrency,
		"export":            exportType,
	}
}
