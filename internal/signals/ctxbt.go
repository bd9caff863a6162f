package signals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/newthinker/sigtrail/internal/core"
)

const ctxbtBaseURL = "https://app.ctxbt.com"

// CTxbtConfig holds the signal API settings
type CTxbtConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CTxbt fetches the caller's signals from the ctxbt API.
type CTxbt struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewCTxbt creates a client. An API key is required.
func NewCTxbt(cfg CTxbtConfig) (*CTxbt, error) {
	if cfg.APIKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("ctxbt api key is required"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = ctxbtBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &CTxbt{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

func (c *CTxbt) Name() string {
	return "ctxbt"
}

// FetchSignals calls GET /api/get-my-signals and unwraps {success, data}.
func (c *CTxbt) FetchSignals(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/get-my-signals", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrSourceFailed, fmt.Errorf("fetching signals: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.ErrSourceFailed, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrSourceFailed,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	if ok := gjson.GetBytes(body, "success"); ok.Exists() && !ok.Bool() {
		return nil, core.WrapError(core.ErrSourceFailed, fmt.Errorf("api reported failure"))
	}

	// an envelope without data means no signals yet
	if d := gjson.GetBytes(body, "data"); !d.Exists() || d.Type == gjson.Null {
		return nil, nil
	}

	records, err := DecodeBatch(body)
	if err != nil {
		return nil, core.WrapError(core.ErrSourceFailed, err)
	}
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
