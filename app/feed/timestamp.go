package feed

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Values above this magnitude are assumed to be epoch milliseconds. The
// digit-count/magnitude heuristic can misclassify legitimate values near the
// boundary; this is a known, accepted limitation carried over as-is.
const millisecondThreshold = int64(1e12)

// CoerceEpochSeconds normalizes heterogeneous timestamp representations
// (integers, epoch-milliseconds, date-only strings, ISO-8601 strings,
// doubly-encoded JSON) into epoch seconds. It is total: any unrecognized
// shape yields ok=false, never a panic.
func CoerceEpochSeconds(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return coerceInt(int64(t)), true
	case int32:
		return coerceInt(int64(t)), true
	case int64:
		return coerceInt(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		if math.Abs(t) > float64(millisecondThreshold) {
			t = t / 1000
		}
		return int64(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return coerceInt(n), true
		}
		if f, err := t.Float64(); err == nil {
			return CoerceEpochSeconds(f)
		}
		return 0, false
	case string:
		return coerceString(t)
	default:
		return 0, false
	}
}

// CoerceLoose additionally unwraps historical object encodings that nest the
// timestamp under common field names before deferring to CoerceEpochSeconds.
func CoerceLoose(v any) (int64, bool) {
	if m, ok := v.(map[string]any); ok {
		for _, field := range []string{"value", "result"} {
			if inner, present := m[field]; present {
				if ts, ok := CoerceLoose(inner); ok {
					return ts, true
				}
			}
		}
		return 0, false
	}
	return CoerceEpochSeconds(v)
}

func coerceInt(n int64) int64 {
	if n > millisecondThreshold || n < -millisecondThreshold {
		return n / 1000
	}
	return n
}

func coerceString(s string) (int64, bool) {
	s = strings.TrimSpace(s)

	// Doubly-encoded values arrive with one surrounding layer of JSON quotes.
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if s == "" {
		return 0, false
	}

	if isInteger(s) {
		digits := strings.TrimPrefix(s, "-")
		if len(digits) == 13 && digits == s {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return 0, false
			}
			return n / 1000, true
		}
		if len(digits) == 8 && digits == s {
			t, err := time.ParseInLocation("20060102", s, time.UTC)
			if err != nil {
				return 0, false
			}
			return t.Unix(), true
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return coerceInt(n), true
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), true
	}

	// Zoneless and otherwise loosely formatted datetimes are assumed UTC.
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.Unix(), true
	}

	return 0, false
}

func isInteger(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
