package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/sigtrail/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGecko_Name(t *testing.T) {
	c := New(Config{})
	if c.Name() != "coingecko" {
		t.Errorf("expected 'coingecko', got '%s'", c.Name())
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, baseURL, c.baseURL)
	assert.Equal(t, "usd", c.vsCurrency)
	assert.Equal(t, 365, c.days)
	assert.Equal(t, 10*time.Second, c.client.Timeout)
}

func TestCoinGecko_FetchPrices(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-cg-demo-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"prices": [[1704067200000, 42000.5], [1704153600000, 43100.25], [1704240000000]],
			"market_caps": [[1704067200000, 1]],
			"total_volumes": [[1704067200000, 1]]
		}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL("demo-key", srv.URL)
	series, err := c.FetchPrices(context.Background(), "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, "/coins/bitcoin/market_chart", gotPath)
	assert.Equal(t, "days=365&vs_currency=usd", gotQuery)
	assert.Equal(t, "demo-key", gotKey)

	// the malformed third pair is skipped
	require.Len(t, series, 2)
	assert.Equal(t, core.PricePoint{Time: 1704067200000, Price: 42000.5}, series[0])
	assert.Equal(t, 43100.25, series[1].Price)
}

func TestCoinGecko_FetchPrices_ResolvesTicker(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"prices": [[1, 2]]}`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL, Days: 30, VsCurrency: "eur"}).FetchPrices(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, "/coins/ethereum/market_chart", gotPath)
}

func TestCoinGecko_FetchPrices_NoAPIKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["X-Cg-Demo-Api-Key"]; ok {
			t.Error("api key header should be omitted when no key is configured")
		}
		w.Write([]byte(`{"prices": [[1, 2]]}`))
	}))
	defer srv.Close()

	_, err := NewWithBaseURL("", srv.URL).FetchPrices(context.Background(), "bitcoin")
	require.NoError(t, err)
}

func TestCoinGecko_FetchPrices_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr *core.Error
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, core.ErrProviderUnavailable},
		{"not found", http.StatusNotFound, `{"error":"coin not found"}`, core.ErrProviderUnavailable},
		{"bad json", http.StatusOK, `{"prices": "nope"`, core.ErrProviderUnavailable},
		{"no prices", http.StatusOK, `{"prices": []}`, core.ErrNoData},
		{"missing prices", http.StatusOK, `{}`, core.ErrNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			series, err := NewWithBaseURL("", srv.URL).FetchPrices(context.Background(), "bitcoin")
			require.Error(t, err)
			assert.Nil(t, series)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestCoinGecko_FetchPrices_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices": [[1, 2]]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWithBaseURL("", srv.URL).FetchPrices(ctx, "bitcoin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

// Integration test - skip in CI
func TestCoinGecko_FetchPrices_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := New(Config{Days: 7})
	series, err := c.FetchPrices(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("FetchPrices failed: %v", err)
	}

	if len(series) == 0 {
		t.Fatal("expected at least one price point")
	}
	for i := 1; i < len(series); i++ {
		if series[i].Time < series[i-1].Time {
			t.Fatalf("series not ascending at %d", i)
		}
	}
}
