package tracker

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02 15:04:05", // fractional seconds are accepted when parsing
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/06 15:04",
	"01/02/2006 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// ParseTime accepts the timestamp formats seen in tracker exports. Values
// without an offset are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ParseEstimation converts an estimation cell to non-negative seconds.
// Empty, unparseable and negative values become 0; ok reports whether the
// cell held a usable number.
func ParseEstimation(s string) (seconds float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 {
		return 0, false
	}
	return v, true
}

// ParseEntityIDs decodes a serialized id list such as "{1,2}", "[1, 2]" or
// "1,2". Malformed input yields an empty set together with the parse error.
func ParseEntityIDs(s string) (EntitySet, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" || s == "{}" || s == "[]" {
		return EntitySet{}, nil
	}

	normalized := strings.NewReplacer("{", "[", "}", "]").Replace(s)
	var ids []int64
	if err := json.Unmarshal([]byte(normalized), &ids); err == nil {
		return NewEntitySet(ids...), nil
	}

	inner := strings.Trim(normalized, "[]")
	for _, part := range strings.Split(inner, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return EntitySet{}, fmt.Errorf("invalid entity id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return NewEntitySet(ids...), nil
}
