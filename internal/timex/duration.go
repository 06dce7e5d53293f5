// Package timex parses the human-readable TTL strings used in configuration
// ("15m", "7d", "500ms") and provides a JSON-friendly Duration wrapper.
package timex

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

var durationPattern = regexp.MustCompile(`(?i)^(\d+)(ms|s|m|h|d|w)?$`)

var unitMillis = map[string]int64{
	"ms": 1,
	"s":  1000,
	"m":  60 * 1000,
	"h":  60 * 60 * 1000,
	"d":  24 * 60 * 60 * 1000,
	"w":  7 * 24 * 60 * 60 * 1000,
}

// ParseMillis converts a TTL string into milliseconds.
//
// The accepted form is digits followed by an optional, case-insensitive unit
// among ms, s, m, h, d and w. Surrounding whitespace is ignored and a missing
// unit means seconds. Anything else fails with common.ErrInvalidDuration.
func ParseMillis(input string) (int64, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidDuration, input)
	}

	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidDuration, input)
	}

	unit := strings.ToLower(m[2])
	if unit == "" {
		unit = "s"
	}
	multiplier, ok := unitMillis[unit]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", common.ErrInvalidDuration, m[2])
	}

	if amount > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("%w: %q overflows", common.ErrInvalidDuration, input)
	}
	return amount * multiplier, nil
}

// ParseSeconds is ParseMillis rounded down to whole seconds, never less than one.
// Token expiry claims have second granularity.
func ParseSeconds(input string) (int64, error) {
	ms, err := ParseMillis(input)
	if err != nil {
		return 0, err
	}
	return max(1, ms/1000), nil
}

// Parse returns the TTL as a time.Duration.
func Parse(input string) (time.Duration, error) {
	ms, err := ParseMillis(input)
	if err != nil {
		return 0, err
	}
	if ms > math.MaxInt64/int64(time.Millisecond) {
		return 0, fmt.Errorf("%w: %q overflows", common.ErrInvalidDuration, input)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
