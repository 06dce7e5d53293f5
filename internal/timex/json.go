package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration wraps time.Duration for JSON configuration files.
//
// It unmarshals from a TTL string ("7d"), a Go duration string ("1h30m") or
// an integer number of nanoseconds, and marshals back to the Go string form.
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		return d.Decode(value)
	default:
		return fmt.Errorf("invalid duration type %T", v)
	}
}

// Decode parses a TTL string or a Go duration string. It satisfies
// envconfig.Decoder so the type can be read from the environment too.
func (d *Duration) Decode(value string) error {
	if parsed, err := Parse(value); err == nil {
		d.Duration = parsed
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value, err)
	}
	d.Duration = parsed
	return nil
}

// Set implements flag.Value.
func (d *Duration) Set(value string) error {
	return d.Decode(value)
}
