// Package calendar holds the civil-date arithmetic shared by the pricing,
// planning and discount packages. A civil date is represented as a
// time.Time at midnight in the location it belongs to.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of a civil date.
const DateLayout = "2006-01-02"

// Day truncates t to midnight of its civil date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD string to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Format renders the civil date of t.
func Format(t time.Time) string { return t.Format(DateLayout) }

// Range returns every civil date from start to end inclusive. It returns nil
// when end is before start.
func Range(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// ISOWeekday returns t's weekday with Monday = 1 and Sunday = 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// FirstFullWeekend returns the day-of-month of the first Saturday and the
// following Sunday of a month. The Saturday is at most the 7th, so the
// Sunday never leaves the month.
func FirstFullWeekend(year int, month time.Month) (saturday, sunday int) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	saturday = ((6-int(first.Weekday()))%7+7)%7 + 1
	return saturday, saturday + 1
}

// AgeOn returns the age in whole years of someone born on dob, on date on.
// The birthday counts from its month and day, not from year subtraction.
func AgeOn(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

// MinuteOfDay returns the minutes elapsed since midnight of t.
func MinuteOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }

// At returns the instant minute minutes after midnight of day, in loc.
// Building it from fields keeps the wall clock right on DST transition days.
func At(day time.Time, minute int, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, loc)
}
