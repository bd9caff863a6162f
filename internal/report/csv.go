package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/newthinker/sigtrail/internal/backtest"
	"github.com/newthinker/sigtrail/internal/signals"
)

// Row is one signal record with its backtest result.
type Row struct {
	Record signals.Record
	Result backtest.Result
}

// Rows pairs records with results by index. Both slices must have the same
// length, as produced by Evaluator.Evaluate.
func Rows(records []signals.Record, evals []backtest.Evaluation) ([]Row, error) {
	if len(records) != len(evals) {
		return nil, fmt.Errorf("%d records but %d results", len(records), len(evals))
	}
	rows := make([]Row, len(records))
	for i := range records {
		rows[i] = Row{Record: records[i], Result: evals[i].Result}
	}
	return rows, nil
}

// column reads a value from the nested record shape, falling back to the
// flat shape.
type column struct {
	header string
	nested string
	flat   string
}

var columns = []column{
	{"Twitter Account", "signal_data.twitterHandle", "twitterHandle"},
	{"Tweet", "signal_data.tweet_link", "tweet_link"},
	{"Tweet Date", "signal_data.tweet_timestamp", "timestamp"},
	{"Signal Generation Date", "signal_data.tweet_timestamp", "timestamp"},
	{"Signal Message", "signal_data.signal", "signal"},
	{"Token Mentioned", "signal_data.tokenMentioned", "tokenMentioned"},
	{"Token ID", "signal_data.tokenId", "tokenId"},
	{"Price at Tweet", "signal_data.priceAtTweet", "entryPrice"},
	{"Current Price", "signal_data.currentPrice", "currentPrice"},
	{"TP1", "signal_data.targets.0", "targetPrice1"},
	{"TP2", "signal_data.targets.1", "targetPrice2"},
	{"SL", "signal_data.stopLoss", "stopLoss"},
}

// Headers returns the CSV header row.
func Headers() []string {
	h := make([]string, 0, len(columns)+2)
	for _, c := range columns {
		h = append(h, c.header)
	}
	return append(h, "Exit Price", "P&L")
}

func (r Row) fields() []string {
	nested := r.Record.Field("signal_data").IsObject()
	out := make([]string, 0, len(columns)+2)
	for _, c := range columns {
		path := c.flat
		if nested {
			path = c.nested
		}
		out = append(out, r.Record.Field(path).String())
	}
	return append(out, r.Result.ExitPriceString(), r.Result.PnLString())
}

// WriteCSV writes the header and one line per row. Every field is quoted
// as needed by encoding/csv; missing fields are written empty.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.fields()); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
