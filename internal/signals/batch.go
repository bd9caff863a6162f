package signals

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/newthinker/sigtrail/internal/core"
)

// DecodeBatch decodes a JSON array of signal records, or an envelope of the
// form {"data": [...]} as returned by the signal API.
func DecodeBatch(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, core.WrapError(core.ErrInvalidBatch, fmt.Errorf("empty body"))
	}
	if !gjson.ValidBytes(data) {
		return nil, core.WrapError(core.ErrInvalidBatch, fmt.Errorf("body is not valid JSON"))
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("data")
	}
	if !root.IsArray() {
		return nil, core.WrapError(core.ErrInvalidBatch, fmt.Errorf("expected an array of signals"))
	}

	items := root.Array()
	records := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := NewRecord([]byte(item.Raw))
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidBatch, fmt.Errorf("record %d: %w", i, err))
		}
		records = append(records, rec)
	}
	return records, nil
}
