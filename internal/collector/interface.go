// Package collector holds price-history providers and the chain that
// combines them.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/newthinker/sigtrail/internal/core"
	"go.uber.org/zap"
)

// Collector is a named source of price history. Token ids are CoinGecko
// coin ids (e.g. "bitcoin"); collectors keyed differently translate them.
type Collector interface {
	Name() string
	FetchPrices(ctx context.Context, tokenID string) (core.PriceSeries, error)
}

// Chain tries collectors in order and returns the first non-empty series.
type Chain struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewChain creates a chain over collectors
func NewChain(logger *zap.Logger, collectors ...Collector) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{collectors: collectors, logger: logger}
}

// FetchPrices implements pricecache.Provider.
func (c *Chain) FetchPrices(ctx context.Context, tokenID string) (core.PriceSeries, error) {
	if len(c.collectors) == 0 {
		return nil, core.WrapError(core.ErrProviderUnavailable, errors.New("no collectors configured"))
	}

	var errs []error
	for _, col := range c.collectors {
		series, err := col.FetchPrices(ctx, tokenID)
		if err == nil && len(series) > 0 {
			return series, nil
		}
		if err == nil {
			err = core.ErrNoData
		}
		c.logger.Debug("collector returned no prices",
			zap.String("collector", col.Name()),
			zap.String("token", tokenID),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", col.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, core.WrapError(core.ErrProviderUnavailable, errors.Join(errs...))
}
