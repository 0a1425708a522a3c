package feed

import (
	"testing"
	"time"
)

func TestCoerceEpochSecondsIntegers(t *testing.T) {
	// Plain epoch seconds pass through unchanged
	ts, ok := CoerceEpochSeconds(int64(1673740800))
	if !ok || ts != 1673740800 {
		t.Errorf("Expected 1673740800, got %d (ok=%t)", ts, ok)
	}

	// Millisecond magnitudes are divided down
	ts, ok = CoerceEpochSeconds(int64(1673740800000))
	if !ok || ts != 1673740800 {
		t.Errorf("Expected 1673740800 from milliseconds, got %d (ok=%t)", ts, ok)
	}

	// JSON numbers decode as float64
	ts, ok = CoerceEpochSeconds(float64(1673740800))
	if !ok || ts != 1673740800 {
		t.Errorf("Expected 1673740800 from float, got %d (ok=%t)", ts, ok)
	}

	ts, ok = CoerceEpochSeconds(float64(1673740800000))
	if !ok || ts != 1673740800 {
		t.Errorf("Expected 1673740800 from float milliseconds, got %d (ok=%t)", ts, ok)
	}
}

func TestCoerceEpochSecondsStrings(t *testing.T) {
	expected := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC).Unix()

	tests := []struct {
		name  string
		input string
		want  int64
		ok    bool
	}{
		{"numeric string", "1673740800", 1673740800, true},
		{"13-digit milliseconds", "1673740800000", 1673740800, true},
		{"8-digit date", "20230115", expected, true},
		{"quoted numeric", `"1673740800"`, 1673740800, true},
		{"iso with zulu", "2023-01-15T00:00:00Z", expected, true},
		{"iso with offset", "2023-01-15T02:00:00+02:00", expected, true},
		{"iso without zone assumes utc", "2023-01-15 00:00:00", expected, true},
		{"whitespace trimmed", "  1673740800  ", 1673740800, true},
		{"garbage", "not-a-date", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceEpochSeconds(tt.input)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%t, got %t", tt.ok, ok)
			}
			if ok && got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCoerceEpochSecondsUnrecognizedShapes(t *testing.T) {
	for _, input := range []any{nil, true, []any{1673740800}, struct{}{}} {
		if _, ok := CoerceEpochSeconds(input); ok {
			t.Errorf("Expected coercion failure for %T(%v)", input, input)
		}
	}
}

func TestCoerceEpochSecondsIdempotent(t *testing.T) {
	// Coercing an already-coerced value returns it unchanged as long as it
	// sits below the millisecond threshold.
	ts, ok := CoerceEpochSeconds(int64(1673740800))
	if !ok {
		t.Fatal("Expected coercion to succeed")
	}
	again, ok := CoerceEpochSeconds(ts)
	if !ok || again != ts {
		t.Errorf("Expected idempotent coercion, got %d then %d", ts, again)
	}
}

func TestCoerceLoose(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int64
		ok    bool
	}{
		{"raw number", float64(100), 100, true},
		{"numeric string", "100", 100, true},
		{"value wrapper", map[string]any{"value": float64(100)}, 100, true},
		{"result wrapper", map[string]any{"result": "100"}, 100, true},
		{"nested wrapper", map[string]any{"result": map[string]any{"value": float64(100)}}, 100, true},
		{"unrelated object", map[string]any{"other": float64(100)}, 0, false},
		{"garbage", "nope", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceLoose(tt.input)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%t, got %t", tt.ok, ok)
			}
			if ok && got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}
