package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/sigtrail/internal/backtest"
	"github.com/newthinker/sigtrail/internal/signals"
)

func mustRecord(t *testing.T, raw string) signals.Record {
	t.Helper()
	rec, err := signals.NewRecord([]byte(raw))
	require.NoError(t, err)
	return rec
}

func TestHeaders(t *testing.T) {
	assert.Equal(t, []string{
		"Twitter Account", "Tweet", "Tweet Date", "Signal Generation Date",
		"Signal Message", "Token Mentioned", "Token ID", "Price at Tweet",
		"Current Price", "TP1", "TP2", "SL", "Exit Price", "P&L",
	}, Headers())
}

func TestWriteCSV(t *testing.T) {
	nested := mustRecord(t, `{"signal_data":{
		"twitterHandle":"@alice","tweet_link":"https://x.com/alice/1",
		"tweet_timestamp":"2024-01-01T00:00:00Z","signal":"Buy, then hold",
		"tokenMentioned":"BTC","tokenId":"bitcoin","priceAtTweet":100,
		"currentPrice":"120","targets":[110,120],"stopLoss":90}}`)
	flat := mustRecord(t, `{"tokenId":"ethereum","entryPrice":2000,"targetPrice1":2200,"stopLoss":1800,"timestamp":"01/02/2024"}`)

	rows := []Row{
		{Record: nested, Result: backtest.Evaluated(104.5, 4.5, backtest.ExitTrailingStop)},
		{Record: flat, Result: backtest.NotAvailable(backtest.ReasonEmptySeries)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, Headers(), lines[0])
	assert.Equal(t, []string{
		"@alice", "https://x.com/alice/1", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z",
		"Buy, then hold", "BTC", "bitcoin", "100", "120", "110", "120", "90",
		"104.500000", "4.50%",
	}, lines[1])
	assert.Equal(t, []string{
		"", "", "01/02/2024", "01/02/2024", "", "", "ethereum", "2000", "", "2200", "", "1800",
		"N/A", "N/A",
	}, lines[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(Headers(), ",")+"\n", buf.String())
}

func TestRows(t *testing.T) {
	rec := mustRecord(t, `{"tokenId":"a"}`)
	evals := []backtest.Evaluation{{Signal: rec.Signal, Result: backtest.NotAvailable(backtest.ReasonOutOfBand)}}

	rows, err := Rows([]signals.Record{rec}, evals)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, backtest.ReasonOutOfBand, rows[0].Result.Reason())

	_, err = Rows([]signals.Record{rec, rec}, evals)
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	rec := mustRecord(t, `{"tokenId":"bitcoin","entryPrice":100,"targetPrice1":110,"stopLoss":90}`)
	rows := []Row{
		{Record: rec, Result: backtest.Evaluated(90, -10, backtest.ExitStopLoss)},
		{Record: rec, Result: backtest.NotAvailable(backtest.ReasonProviderUnavailable)},
	}
	evals := []backtest.Evaluation{
		{Signal: rec.Signal, Result: rows[0].Result},
		{Signal: rec.Signal, Result: rows[1].Result},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, rows, backtest.Summarize(evals)))

	out := buf.String()
	assert.Contains(t, out, "TOKEN")
	assert.Contains(t, out, "90.000000")
	assert.Contains(t, out, "-10.00%")
	assert.Contains(t, out, "stop_loss")
	assert.Contains(t, out, "provider_unavailable")
	assert.Contains(t, out, "Signals:       2 (1 evaluated, 1 N/A)")
	assert.Contains(t, out, "Win rate:      0.00% (0 won, 1 lost)")
}
