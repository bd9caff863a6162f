package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBacktestCommand(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	day := int64(24 * time.Hour / time.Millisecond)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/market_chart" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"prices": [[%d, 100], [%d, 112], [%d, 115], [%d, 113.5]]}`,
			start, start+day, start+2*day, start+3*day)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
log:
  level: error
provider:
  order: [coingecko]
  coingecko:
    base_url: %q
export:
  type: localfs
  path: %q
`, srv.URL, filepath.Join(dir, "exports"))), 0644))

	inputPath := filepath.Join(dir, "signals.json")
	require.NoError(t, os.WriteFile(inputPath, []byte(`[
		{"signal_data": {"tokenId": "bitcoin", "priceAtTweet": 100, "targets": [110, 120], "stopLoss": 90, "tweet_timestamp": "01/01/2024"}},
		{"signal_data": {"tokenId": "nope", "priceAtTweet": 1, "targets": [2], "stopLoss": 0.5, "tweet_timestamp": "01/01/2024"}}
	]`), 0644))

	csvPath := filepath.Join(dir, "out.csv")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"backtest", "-c", cfgPath, "-i", inputPath, "--csv", csvPath, "--export"})
	require.NoError(t, rootCmd.Execute())

	table := out.String()
	assert.Contains(t, table, "113.500000")
	assert.Contains(t, table, "13.50%")
	assert.Contains(t, table, "trailing_stop")
	assert.Contains(t, table, "provider_unavailable")

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "113.500000,13.50%"))
	assert.True(t, strings.HasSuffix(lines[2], "N/A,N/A"))

	assert.Contains(t, errOut.String(), "Report exported to reports/")
	exported, err := filepath.Glob(filepath.Join(dir, "exports", "reports", "*.csv"))
	require.NoError(t, err)
	assert.Len(t, exported, 1)
}
