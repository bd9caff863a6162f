package backtest

import (
	"context"
	"time"

	"github.com/newthinker/sigtrail/internal/core"
	"github.com/newthinker/sigtrail/internal/metrics"
	"github.com/newthinker/sigtrail/internal/pricecache"
	"github.com/newthinker/sigtrail/internal/timestamp"
	"go.uber.org/zap"
)

// Evaluator backtests batches of signals against provider price history
type Evaluator struct {
	builder *pricecache.Builder
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewEvaluator creates an Evaluator that fetches prices through builder
func NewEvaluator(builder *pricecache.Builder, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		builder: builder,
		logger:  logger,
	}
}

// SetMetrics enables batch and per-signal metrics
func (e *Evaluator) SetMetrics(reg *metrics.Registry) {
	e.metrics = reg
	e.builder.SetMetrics(reg)
}

// Evaluate fetches price history for every distinct token in signals, then
// evaluates each signal. The result has one entry per input signal, in
// input order. Provider failures only affect signals of that token.
func (e *Evaluator) Evaluate(ctx context.Context, signals []core.Signal) []Evaluation {
	start := time.Now()

	cache := e.builder.Build(ctx, UniqueTokens(signals))
	evals := EvaluateWithCache(cache, signals)

	var available int
	for _, ev := range evals {
		if ev.Result.Available() {
			available++
		} else {
			e.logger.Debug("signal not available",
				zap.String("token", ev.Signal.TokenID),
				zap.String("timestamp", ev.Signal.Timestamp),
				zap.String("reason", string(ev.Result.Reason())),
			)
		}
		if e.metrics != nil {
			e.metrics.RecordSignal(string(ev.Result.Outcome()), string(ev.Result.Reason()))
		}
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordBatch(elapsed.Seconds())
	}

	e.logger.Info("batch evaluated",
		zap.Int("signals", len(signals)),
		zap.Int("tokens", cache.Len()),
		zap.Int("evaluated", available),
		zap.Int("not_available", len(evals)-available),
		zap.Duration("duration", elapsed),
	)

	return evals
}

// UniqueTokens returns the distinct non-empty token ids of signals in order
// of first appearance.
func UniqueTokens(signals []core.Signal) []string {
	seen := make(map[string]struct{}, len(signals))
	ids := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.TokenID == "" {
			continue
		}
		if _, ok := seen[s.TokenID]; ok {
			continue
		}
		seen[s.TokenID] = struct{}{}
		ids = append(ids, s.TokenID)
	}
	return ids
}

// EvaluateWithCache evaluates every signal against an already built cache.
// It performs no I/O and does not modify the cache.
func EvaluateWithCache(cache *pricecache.Cache, signals []core.Signal) []Evaluation {
	evals := make([]Evaluation, len(signals))
	for i, sig := range signals {
		evals[i] = Evaluation{Signal: sig, Result: evaluateOne(cache, sig)}
	}
	return evals
}

func evaluateOne(cache *pricecache.Cache, sig core.Signal) Result {
	series, ok := cache.Lookup(sig.TokenID)
	if !ok {
		return NotAvailable(ReasonProviderUnavailable)
	}

	ts, err := timestamp.Normalize(sig.Timestamp)
	if err != nil {
		return NotAvailable(ReasonInvalidTimestamp)
	}

	relevant := series.Since(ts)
	if len(relevant) == 0 {
		return NotAvailable(ReasonEmptySeries)
	}

	return Simulate(sig, relevant)
}
