// Package clock supplies the calendar primitives the reconciliation engine
// depends on: current time, month keys, month boundaries and day clamping.
// Keeping them behind a small interface lets tests pin "now" to a fixed date.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall-clock implementation.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant. Intended for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

// monthLayout is the canonical form of a calendar-month identifier.
const monthLayout = "2006-01"

// MonthKey returns the canonical YYYY-MM identifier for t's calendar month.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseMonthKey parses a canonical YYYY-MM identifier.
func ParseMonthKey(s string) (time.Time, error) {
	return time.Parse(monthLayout, s)
}

// FirstOfMonth returns midnight UTC on the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay caps day to the last valid day of the given month, so a due day of
// 31 lands on February 28/29 rather than overflowing into March.
func ClampDay(year, month, day int) int {
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// DaysRemainingInMonth counts the days left in t's month including t's day
// itself. Never less than 1.
func DaysRemainingInMonth(t time.Time) int {
	remaining := LastDayOfMonth(t.Year(), int(t.Month())) - t.Day() + 1
	if remaining < 1 {
		return 1
	}
	return remaining
}

// DaysBetween returns the number of whole days from a to b, negative when b
// precedes a.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
