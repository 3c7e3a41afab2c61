package dtos

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// maxEpochMillis bounds numeric timestamps to +/-100,000,000 days around
// the epoch; anything outside is not a date.
const maxEpochMillis = 8.64e15

// Layouts accepted for string timestamps, tried in order. Zone-less values
// are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// FlexibleTime accepts a JSON string or an epoch-milliseconds number.
// Decoding never fails: an unusable value is kept in Raw with Valid=false so
// the caller can report it against the right field.
type FlexibleTime struct {
	Time  time.Time
	Raw   string
	Valid bool
}

func (t *FlexibleTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	t.Raw = string(b)
	t.Valid = false

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		t.Raw = s
		if parsed, ok := ParseTimestamp(s); ok {
			t.Time = parsed
			t.Valid = true
		}
		return nil
	}

	ms, err := strconv.ParseFloat(string(b), 64)
	if err == nil && !math.IsNaN(ms) && !math.IsInf(ms, 0) && math.Abs(ms) <= maxEpochMillis {
		t.Time = time.UnixMilli(int64(ms)).UTC()
		t.Valid = true
	}
	return nil
}

// Blank reports an empty string, which is treated like an absent value.
func (t *FlexibleTime) Blank() bool {
	return !t.Valid && t.Raw == ""
}

func (t FlexibleTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// ParseTimestamp parses s with the accepted layouts and returns it in UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
