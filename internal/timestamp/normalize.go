// Package timestamp converts the date strings found on signals into epoch
// milliseconds.
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/sigtrail/internal/core"
)

// instantLayouts are tried in order for strings of the form ...T...Z.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// Normalize parses s into epoch milliseconds (UTC).
//
// Strings containing a 'T' and ending in 'Z' are read as ISO-8601 instants.
// Anything else is read as a day-month-year date delimited by '/' or '-'
// and mapped to UTC midnight. Day-first order is assumed for every input,
// so "03/04/2025" is 3 April 2025.
func Normalize(s string) (int64, error) {
	if strings.Contains(s, "T") && strings.HasSuffix(s, "Z") {
		return parseInstant(s)
	}
	return parseDate(s)
}

func parseInstant(s string) (int64, error) {
	var lastErr error
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UnixMilli(), nil
		}
		lastErr = err
	}
	return 0, core.WrapError(core.ErrInvalidTimestamp, fmt.Errorf("%q: %w", s, lastErr))
}

func parseDate(s string) (int64, error) {
	delimiter := "-"
	if strings.Contains(s, "/") {
		delimiter = "/"
	}

	parts := strings.Split(s, delimiter)
	if len(parts) != 3 {
		return 0, core.WrapError(core.ErrInvalidTimestamp,
			fmt.Errorf("%q: expected day%smonth%syear", s, delimiter, delimiter))
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, core.WrapError(core.ErrInvalidTimestamp, fmt.Errorf("%q: %w", s, err))
		}
		fields[i] = n
	}

	day, month, year := fields[0], fields[1], fields[2]
	// time.Date normalizes out-of-range day and month values.
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).UnixMilli(), nil
}
