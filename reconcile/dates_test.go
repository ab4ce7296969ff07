package reconcile

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		name string
		a, b Date
		want int
	}{
		{"same day", NewDate(2025, time.March, 10), NewDate(2025, time.March, 10), 0},
		{"forward three days", NewDate(2025, time.March, 10), NewDate(2025, time.March, 13), 3},
		{"backward three days", NewDate(2025, time.March, 13), NewDate(2025, time.March, 10), -3},
		{"across month boundary", NewDate(2025, time.January, 30), NewDate(2025, time.February, 2), 3},
		{"across year boundary", NewDate(2024, time.December, 30), NewDate(2025, time.January, 2), 3},
		{"across leap day", NewDate(2024, time.February, 28), NewDate(2024, time.March, 1), 2},
	}
	for _, tc := range cases {
		if got := DaysBetween(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: DaysBetween(%s, %s) = %d, want %d", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	a := DateOf(time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC))
	b := DateOf(time.Date(2025, time.March, 11, 0, 1, 0, 0, time.UTC))
	if got := DaysBetween(a, b); got != 1 {
		t.Fatalf("expected 1 day between adjacent dates, got %d", got)
	}
}

func TestCountWeekendDays(t *testing.T) {
	// 2025-03-10 is a Monday.
	mon := NewDate(2025, time.March, 10)
	cases := []struct {
		name string
		a, b Date
		want int
	}{
		{"same day", mon, mon, 0},
		{"same weekend day", NewDate(2025, time.March, 15), NewDate(2025, time.March, 15), 0},
		{"monday to friday", mon, NewDate(2025, time.March, 14), 0},
		{"monday to saturday", mon, NewDate(2025, time.March, 15), 1},
		{"monday to sunday", mon, NewDate(2025, time.March, 16), 2},
		{"monday to next monday", mon, NewDate(2025, time.March, 17), 2},
		{"two full weeks", mon, NewDate(2025, time.March, 24), 4},
	}
	for _, tc := range cases {
		if got := CountWeekendDays(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: CountWeekendDays(%s, %s) = %d, want %d", tc.name, tc.a, tc.b, got, tc.want)
		}
		if got := CountWeekendDays(tc.b, tc.a); got != tc.want {
			t.Errorf("%s reversed: CountWeekendDays(%s, %s) = %d, want %d", tc.name, tc.b, tc.a, got, tc.want)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.March, 13)
	raw, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2025-03-13"` {
		t.Fatalf("unexpected json %s", raw)
	}
	var back Date
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %s != %s", back, d)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := ParseDate("13/03/2025"); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}
