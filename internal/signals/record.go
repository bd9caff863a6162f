package signals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/newthinker/sigtrail/internal/core"
)

// Field paths of the upstream signal shape, nested under signal_data.
const (
	nestedKey       = "signal_data"
	pathTokenID     = "tokenId"
	pathEntry       = "priceAtTweet"
	pathTP1         = "targets.0"
	pathTP2         = "targets.1"
	pathStopLoss    = "stopLoss"
	pathTimestamp   = "tweet_timestamp"
	flatEntry       = "entryPrice"
	flatTP1         = "targetPrice1"
	flatTP2         = "targetPrice2"
	flatTimestamp   = "timestamp"
	fieldExitPrice  = "exit_price"
	fieldPnLPercent = "p_and_l"
)

// Record is one raw signal object together with the Signal decoded from it.
// The raw bytes are kept so results can be written back without losing
// fields the engine does not know about.
type Record struct {
	raw    json.RawMessage
	Signal core.Signal
}

// NewRecord decodes a single JSON object. Missing or non-numeric price
// fields decode to NaN and are rejected later by the simulator, so a
// malformed signal does not fail the batch.
func NewRecord(raw []byte) (Record, error) {
	raw = bytes.TrimSpace(raw)
	if !gjson.ValidBytes(raw) {
		return Record{}, core.WrapError(core.ErrInvalidSignal, fmt.Errorf("record is not valid JSON"))
	}
	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return Record{}, core.WrapError(core.ErrInvalidSignal, fmt.Errorf("record is %s, want object", obj.Type))
	}

	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Record{raw: cp, Signal: decodeSignal(obj)}, nil
}

func decodeSignal(obj gjson.Result) core.Signal {
	if nested := obj.Get(nestedKey); nested.IsObject() {
		return core.Signal{
			TokenID:      nested.Get(pathTokenID).String(),
			EntryPrice:   number(nested.Get(pathEntry)),
			TargetPrice1: number(nested.Get(pathTP1)),
			TargetPrice2: number(nested.Get(pathTP2)),
			StopLoss:     number(nested.Get(pathStopLoss)),
			Timestamp:    nested.Get(pathTimestamp).String(),
		}
	}

	return core.Signal{
		TokenID:      obj.Get(pathTokenID).String(),
		EntryPrice:   number(obj.Get(flatEntry)),
		TargetPrice1: number(obj.Get(flatTP1)),
		TargetPrice2: number(obj.Get(flatTP2)),
		StopLoss:     number(obj.Get(pathStopLoss)),
		Timestamp:    obj.Get(flatTimestamp).String(),
	}
}

// number accepts JSON numbers and numeric strings.
func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Float()
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// Raw returns the original JSON object.
func (r Record) Raw() json.RawMessage {
	return r.raw
}

// Field looks up a gjson path in the raw record, e.g. "signal_data.twitterHandle".
func (r Record) Field(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Augment returns a copy of the raw record with exit_price and p_and_l set
// at the top level. The receiver is not modified.
func (r Record) Augment(exitPrice, pnl string) (json.RawMessage, error) {
	out, err := sjson.SetBytes(r.raw, fieldExitPrice, exitPrice)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", fieldExitPrice, err)
	}
	out, err = sjson.SetBytes(out, fieldPnLPercent, pnl)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", fieldPnLPercent, err)
	}
	return out, nil
}

// MarshalJSON emits the raw record unchanged.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw == nil {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// Signals extracts the decoded signals in record order.
func Signals(records []Record) []core.Signal {
	out := make([]core.Signal, len(records))
	for i, r := range records {
		out[i] = r.Signal
	}
	return out
}
