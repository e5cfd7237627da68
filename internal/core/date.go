package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrMalformedDate = errors.New("malformed date")

// ParseDate parses a "YYYY-MM-DD" string into a local calendar date. The
// string is split into components and the date is constructed in the local
// location on purpose: parsing through time.Parse with a UTC layout shifts
// the day across timezones west of Greenwich.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// ParseMonthKey parses a "YYYY-MM" month key into the first day of that month.
func ParseMonthKey(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local), nil
}

// MonthKey formats a date as its "YYYY-MM" month key.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// FormatDate formats a date back to "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// DaysInMonth returns the number of calendar days in year/month, leap years
// included. Day 0 of the next month is the last day of this one.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// MonthStart truncates a date to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ShiftMonth moves a date by n calendar months, anchored to the first of the
// month. Plain AddDate overflows at month ends (Mar 31 minus one month lands
// on Mar 3), so the shift always goes through the month start.
func ShiftMonth(t time.Time, n int) time.Time {
	return MonthStart(t).AddDate(0, n, 0)
}

// ClampDay transposes a day-of-month onto year/month, clamping to the last
// valid day when the source day does not exist there (31st into February).
func ClampDay(year int, month time.Month, day int) time.Time {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
