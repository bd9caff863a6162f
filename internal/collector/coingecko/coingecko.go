package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newthinker/sigtrail/internal/collector"
	"github.com/newthinker/sigtrail/internal/core"
)

const (
	baseURL = "https://api.coingecko.com/api/v3"
)

// Config holds CoinGecko settings
type Config struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	VsCurrency string        `mapstructure:"vs_currency"`
	Days       int           `mapstructure:"days"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the public API with a one-year USD window
func DefaultConfig() Config {
	return Config{
		BaseURL:    baseURL,
		VsCurrency: "usd",
		Days:       365,
		Timeout:    10 * time.Second,
	}
}

// CoinGecko implements collector.Collector
type CoinGecko struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	vsCurrency string
	days       int
}

// New creates a new CoinGecko provider. Zero fields of cfg take defaults.
func New(cfg Config) *CoinGecko {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = def.VsCurrency
	}
	if cfg.Days <= 0 {
		cfg.Days = def.Days
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	return &CoinGecko{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		vsCurrency: cfg.VsCurrency,
		days:       cfg.Days,
	}
}

// NewWithBaseURL creates a CoinGecko provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, base string) *CoinGecko {
	return New(Config{APIKey: apiKey, BaseURL: base})
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

// marketChart is the subset of /coins/{id}/market_chart we read
type marketChart struct {
	Prices [][]float64 `json:"prices"`
}

// FetchPrices fetches the price history of a coin over the configured
// window. Points are returned in the order CoinGecko sends them (ascending).
func (c *CoinGecko) FetchPrices(ctx context.Context, tokenID string) (core.PriceSeries, error) {
	coinID := collector.ResolveID(tokenID)

	q := url.Values{}
	q.Set("vs_currency", c.vsCurrency)
	q.Set("days", strconv.Itoa(c.days))
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(coinID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("fetching %s: %w", coinID, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrProviderUnavailable,
			fmt.Errorf("fetching %s: unexpected status: %d", coinID, resp.StatusCode))
	}

	// CoinGecko returns {"prices": [[timestamp_ms, price], ...], ...}
	var chart marketChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, core.WrapError(core.ErrProviderUnavailable, fmt.Errorf("decoding response: %w", err))
	}

	series := make(core.PriceSeries, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		if len(pair) < 2 {
			continue
		}
		series = append(series, core.PricePoint{
			Time:  int64(pair[0]),
			Price: pair[1],
		})
	}

	if len(series) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no prices for %s", coinID))
	}

	return series, nil
}
