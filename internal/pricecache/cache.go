// Package pricecache fetches price histories for a batch of tokens and
// freezes them into a read-only lookup.
package pricecache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newthinker/sigtrail/internal/core"
	"github.com/newthinker/sigtrail/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Provider returns the ascending price history of a token. An empty series
// or a non-nil error both mean "no data" for that token.
type Provider interface {
	FetchPrices(ctx context.Context, tokenID string) (core.PriceSeries, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, tokenID string) (core.PriceSeries, error)

// FetchPrices calls f.
func (f ProviderFunc) FetchPrices(ctx context.Context, tokenID string) (core.PriceSeries, error) {
	return f(ctx, tokenID)
}

// Cache maps token ids to price series. It is immutable once built and safe
// for concurrent readers. Returned series must not be modified.
type Cache struct {
	series map[string]core.PriceSeries
}

// NewCache freezes a copy of series into a Cache. Empty series are dropped.
func NewCache(series map[string]core.PriceSeries) *Cache {
	frozen := make(map[string]core.PriceSeries, len(series))
	for id, s := range series {
		if len(s) > 0 {
			frozen[id] = s
		}
	}
	return &Cache{series: frozen}
}

// Lookup returns the series for tokenID.
func (c *Cache) Lookup(tokenID string) (core.PriceSeries, bool) {
	s, ok := c.series[tokenID]
	return s, ok
}

// Len returns the number of tokens with data.
func (c *Cache) Len() int {
	return len(c.series)
}

// Tokens returns the cached token ids in sorted order.
func (c *Cache) Tokens() []string {
	ids := make([]string, 0, len(c.series))
	for id := range c.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Config holds builder configuration
type Config struct {
	// Concurrency bounds the number of in-flight provider calls.
	// Zero or negative means unbounded.
	Concurrency int `mapstructure:"fetch_concurrency"`
}

// DefaultConfig returns default builder configuration
func DefaultConfig() Config {
	return Config{Concurrency: 8}
}

// Builder fans out provider calls and assembles a Cache.
type Builder struct {
	provider Provider
	cfg      Config
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// NewBuilder creates a cache builder backed by provider
func NewBuilder(provider Provider, cfg Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetMetrics enables fetch metrics
func (b *Builder) SetMetrics(reg *metrics.Registry) {
	b.metrics = reg
}

// Build fetches every distinct non-empty token id concurrently and returns
// once all fetches have settled. Tokens whose fetch failed or returned no
// points are absent from the result; Build itself never fails.
func (b *Builder) Build(ctx context.Context, tokenIDs []string) *Cache {
	var (
		mu      sync.Mutex
		fetched = make(map[string]core.PriceSeries, len(tokenIDs))
		seen    = make(map[string]struct{}, len(tokenIDs))
		g       errgroup.Group
	)
	if b.cfg.Concurrency > 0 {
		g.SetLimit(b.cfg.Concurrency)
	}

	for _, id := range tokenIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			series, ok := b.fetch(ctx, id)
			if !ok {
				return nil
			}
			mu.Lock()
			fetched[id] = series
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait is the fan-in barrier.
	_ = g.Wait()

	b.logger.Debug("price cache built",
		zap.Int("requested", len(seen)),
		zap.Int("cached", len(fetched)),
	)

	return &Cache{series: fetched}
}

func (b *Builder) fetch(ctx context.Context, tokenID string) (core.PriceSeries, bool) {
	start := time.Now()
	series, err := b.provider.FetchPrices(ctx, tokenID)
	elapsed := time.Since(start).Seconds()

	switch {
	case err != nil:
		b.logger.Warn("price fetch failed",
			zap.String("token", tokenID),
			zap.Error(err),
		)
		b.record("error", elapsed)
		return nil, false
	case len(series) == 0:
		b.logger.Warn("price fetch returned no data", zap.String("token", tokenID))
		b.record("empty", elapsed)
		return nil, false
	}

	b.record("ok", elapsed)
	return series, true
}

func (b *Builder) record(status string, duration float64) {
	if b.metrics != nil {
		b.metrics.RecordPriceFetch(status, duration)
	}
}
