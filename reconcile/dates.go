package reconcile

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component. The zero value is
// not a valid date; use NewDate, DateOf or ParseDate.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %v", value, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool            { return d.t.IsZero() }
func (d Date) Time() time.Time         { return d.t }
func (d Date) Weekday() time.Weekday   { return d.t.Weekday() }
func (d Date) Equal(other Date) bool   { return d.t.Equal(other.t) }
func (d Date) Before(other Date) bool  { return d.t.Before(other.t) }
func (d Date) After(other Date) bool   { return d.t.After(other.t) }
func (d Date) AddDays(n int) Date      { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) String() string          { return d.t.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date json %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the whole calendar days from a to b, signed. Both
// dates are already midnight-normalized so the division is exact.
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t) / (24 * time.Hour))
}

// CountWeekendDays counts Saturdays and Sundays in the inclusive span
// between a and b, in either order. Equal dates count as an empty span.
func CountWeekendDays(a, b Date) int {
	if a.Equal(b) {
		return 0
	}
	if a.After(b) {
		a, b = b, a
	}
	count := 0
	for d := a; !d.After(b); d = d.AddDays(1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			count++
		}
	}
	return count
}
