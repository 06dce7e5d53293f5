package timex

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMillis(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "minutes", input: "15m", want: 900000},
		{name: "days", input: "7d", want: 604800000},
		{name: "default unit is seconds", input: "5", want: 5000},
		{name: "milliseconds", input: "250ms", want: 250},
		{name: "hours", input: "2h", want: 7200000},
		{name: "weeks", input: "1w", want: 604800000},
		{name: "upper case unit", input: "3S", want: 3000},
		{name: "mixed case ms", input: "10Ms", want: 10},
		{name: "surrounding whitespace", input: "  30s \t", want: 30000},
		{name: "zero", input: "0s", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMillis(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMillis_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "", "  ", "-5s", "1.5h", "10y", "5 m", "m", "1h30m", "99999999999999999999", "9223372036854775807w"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseMillis(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidDuration)
		})
	}
}

func TestParseSeconds(t *testing.T) {
	got, err := ParseSeconds("15m")
	require.NoError(t, err)
	assert.Equal(t, int64(900), got)

	got, err = ParseSeconds("1500ms")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "rounds down")

	got, err = ParseSeconds("0s")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "floored at one second")

	_, err = ParseSeconds("abc")
	assert.ErrorIs(t, err, common.ErrInvalidDuration)
}

func TestParse(t *testing.T) {
	got, err := Parse("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, got)

	_, err = Parse("7x")
	assert.ErrorIs(t, err, common.ErrInvalidDuration)
}
