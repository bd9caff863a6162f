package timestamp

import (
	"errors"
	"testing"
	"time"

	"github.com/newthinker/sigtrail/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(t time.Time) int64 { return t.UnixMilli() }

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"2024-03-15T10:30:00Z", ms(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))},
		{"2024-03-15T10:30:00.250Z", ms(time.Date(2024, 3, 15, 10, 30, 0, 250_000_000, time.UTC))},
		{"2024-03-15T10:30Z", ms(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))},
		{"15/03/2024", ms(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))},
		{"15-03-2024", ms(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))},
		{"1/2/2025", ms(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))},
		// day-first even when the value reads naturally as month-first
		{"03/04/2025", ms(time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC))},
		// out-of-range day rolls over
		{"32/01/2024", ms(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))},
		{" 5 / 6 / 2024", ms(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"yesterday",
		"2024-13-45T99:00:00Z",
		"notaTdateZ",
		"15/03",
		"15/03/2024/extra",
		"aa/bb/cccc",
		"2024-03-15T10:30:00", // no Z, falls through to the date branch
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Normalize(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidTimestamp), "got %v", err)
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	a, err := Normalize("10/10/2024")
	require.NoError(t, err)
	b, err := Normalize("10/10/2024")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
