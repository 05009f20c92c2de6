package cryptotax

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in   string
		want Date
	}{
		{"2024-03-10", NewDate(2024, time.March, 10)},
		{"2024-3-9", NewDate(2024, time.March, 9)},
		// Exchange exports carry timestamps; only the day matters here.
		{"2024-03-10 14:03:22", NewDate(2024, time.March, 10)},
		{"2024-03-10T14:03:22Z", NewDate(2024, time.March, 10)},
	}
	for _, tc := range testCases {
		got, err := ParseDate(tc.in)
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseDate("10/03/2024"); err == nil {
		t.Error("ParseDate(10/03/2024) succeeded, want error")
	}
}

func TestDate_Sub(t *testing.T) {
	a := NewDate(2023, time.January, 1)
	if got := a.Add(365).Sub(a); got != 365 {
		t.Errorf("Sub() = %d, want 365", got)
	}
	// A leap year holding period still counts calendar days.
	b := NewDate(2024, time.January, 1)
	if got := NewDate(2025, time.January, 1).Sub(b); got != 366 {
		t.Errorf("Sub() across leap year = %d, want 366", got)
	}
	if got := a.Sub(a); got != 0 {
		t.Errorf("Sub(self) = %d, want 0", got)
	}
}

func TestDate_AddNormalizes(t *testing.T) {
	if got := NewDate(2024, time.December, 31).Add(1); got != NewDate(2025, time.January, 1) {
		t.Errorf("Add(1) = %s, want 2025-01-01", got)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.March, 10)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	if string(b) != `"2024-03-10"` {
		t.Errorf("MarshalJSON() = %s, want \"2024-03-10\"", b)
	}
	var got Date
	if err := got.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() failed: %v", err)
	}
	if got != d {
		t.Errorf("round trip = %s, want %s", got, d)
	}
}
