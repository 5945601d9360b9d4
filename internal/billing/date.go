package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// Date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (read as UTC
// midnight). Empty strings and null decode to the zero value.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	d.Time = t
	return nil
}

// ptr returns nil for a missing or empty date.
func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
