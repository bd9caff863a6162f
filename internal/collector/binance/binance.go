package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/newthinker/sigtrail/internal/collector"
	"github.com/newthinker/sigtrail/internal/core"
)

const (
	baseURL = "https://api.binance.com"

	// klines endpoint caps a single response at 1000 candles
	maxKlines = 1000
)

// Config holds Binance settings
type Config struct {
	BaseURL  string        `mapstructure:"base_url"`
	Quote    string        `mapstructure:"quote_asset"`
	Interval string        `mapstructure:"interval"`
	Days     int           `mapstructure:"days"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns daily USDT candles over one year
func DefaultConfig() Config {
	return Config{
		BaseURL:  baseURL,
		Quote:    "USDT",
		Interval: "1d",
		Days:     365,
		Timeout:  10 * time.Second,
	}
}

// Binance implements collector.Collector using spot klines. It is a
// fallback for tokens CoinGecko cannot serve, so only tokens with a known
// ticker are supported.
type Binance struct {
	client   *http.Client
	baseURL  string
	quote    string
	interval string
	days     int
	now      func() time.Time
}

// New creates a new Binance provider. Zero fields of cfg take defaults.
func New(cfg Config) *Binance {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Quote == "" {
		cfg.Quote = def.Quote
	}
	if cfg.Interval == "" {
		cfg.Interval = def.Interval
	}
	if cfg.Days <= 0 {
		cfg.Days = def.Days
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	return &Binance{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:  cfg.BaseURL,
		quote:    cfg.Quote,
		interval: toInterval(cfg.Interval),
		days:     cfg.Days,
		now:      time.Now,
	}
}

// NewWithBaseURL creates a Binance provider with custom base URL (for testing)
func NewWithBaseURL(base string) *Binance {
	return New(Config{BaseURL: base})
}

func (b *Binance) Name() string {
	return "binance"
}

// Symbol returns the trading pair for tokenID, e.g. "bitcoin" -> "BTCUSDT".
func (b *Binance) Symbol(tokenID string) (string, bool) {
	ticker, ok := collector.TickerFor(tokenID)
	if !ok {
		return "", false
	}
	return ticker + b.quote, true
}

// FetchPrices fetches close prices for the configured window. Each point is
// stamped with the candle's close time.
func (b *Binance) FetchPrices(ctx context.Context, tokenID string) (core.PriceSeries, error) {
	symbol, ok := b.Symbol(tokenID)
	if !ok {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no binance pair for %q", tokenID))
	}

	end := b.now()
	start := end.AddDate(0, 0, -b.days)
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&startTime=%d&endTime=%d&limit=%d",
		b.baseURL, symbol, b.interval, start.UnixMilli(), end.UnixMilli(), maxKlines)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("fetching %s: %w", symbol, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrProviderUnavailable,
			fmt.Errorf("fetching %s: unexpected status: %d", symbol, resp.StatusCode))
	}

	var klines [][]any
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("decoding response: %w", err))
	}

	series := make(core.PriceSeries, 0, len(klines))
	for _, k := range klines {
		// [openTime, open, high, low, close, volume, closeTime, ...]
		if len(k) < 7 {
			continue
		}

		closeStr, _ := k[4].(string)
		closeTime, _ := k[6].(float64)

		price, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			continue
		}

		series = append(series, core.PricePoint{
			Time:  int64(closeTime),
			Price: price,
		})
	}

	if len(series) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no klines for %s", symbol))
	}

	return series, nil
}

func toInterval(interval string) string {
	switch interval {
	case "1m", "5m", "15m", "30m":
		return interval
	case "1h", "2h", "4h":
		return interval
	case "1d":
		return "1d"
	case "1w":
		return "1w"
	default:
		return "1d"
	}
}
