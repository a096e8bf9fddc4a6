// Package dates implements calendar days without a time-of-day component.
//
// Dates serialize as yyyy-MM-dd, which sorts lexically in calendar order.
package dates

import (
	"fmt"
	"time"
)

// Layout is the on-disk and command-line format of a Date.
const Layout = "2006-01-02"

// Date is a single calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the calendar day of t in t's location.
func Of(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// Today returns the local calendar day containing now.
func Today(now time.Time) Date {
	return Of(now.Local())
}

// New builds a normalized Date, so New(2024, 1, 32) is February 1st.
func New(year int, month time.Month, day int) Date {
	return Of(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// Parse reads a yyyy-MM-dd date.
func Parse(value string) (Date, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q (want %s)", ErrInvalidDate, value, Layout)
	}
	return Of(t), nil
}

// String formats the date as yyyy-MM-dd.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days after d. Negative n moves backwards.
func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	from := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
	to := time.Date(other.Year, other.Month, other.Day, 12, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Compare returns -1, 0 or 1 as d is before, equal to, or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return compareInt(d.Year, other.Year)
	case d.Month != other.Month:
		return compareInt(int(d.Month), int(other.Month))
	default:
		return compareInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Ptr returns a pointer to a copy of d.
func Ptr(d Date) *Date {
	return &d
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
