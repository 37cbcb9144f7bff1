// Package dates provides calendar-day arithmetic on UTC civil dates.
// Days are passed around as ISO "YYYY-MM-DD" strings, which sort
// lexicographically in chronological order.
package dates

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// ParseYMD parses an ISO day string into a UTC midnight time.
func ParseYMD(ymd string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, ymd, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", ymd, err)
	}
	return t, nil
}

// YMD formats a time as an ISO day string in UTC.
func YMD(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Today returns the current UTC civil date.
func Today() string {
	return YMD(time.Now())
}

// Valid reports whether ymd is a well-formed ISO day string.
func Valid(ymd string) bool {
	_, err := ParseYMD(ymd)
	return err == nil
}

// AddDays returns the day n calendar days after ymd. Negative n goes
// backwards. Returns ymd unchanged if it does not parse.
func AddDays(ymd string, n int) string {
	t, err := ParseYMD(ymd)
	if err != nil {
		return ymd
	}
	return YMD(t.AddDate(0, 0, n))
}

// DaysBetween returns the number of calendar days from a to b
// (negative if b precedes a). Returns 0 if either does not parse.
func DaysBetween(a, b string) int {
	ta, err := ParseYMD(a)
	if err != nil {
		return 0
	}
	tb, err := ParseYMD(b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta) / (24 * time.Hour))
}

// DatesInRange returns every day from start to end inclusive.
// Empty if end precedes start or either bound does not parse.
func DatesInRange(start, end string) []string {
	ts, err := ParseYMD(start)
	if err != nil {
		return nil
	}
	te, err := ParseYMD(end)
	if err != nil {
		return nil
	}
	var days []string
	for cursor := ts; !cursor.After(te); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, YMD(cursor))
	}
	return days
}

// FmtMD formats a day as "Nov 9".
func FmtMD(ymd string) string {
	t, err := ParseYMD(ymd)
	if err != nil {
		return ymd
	}
	return fmt.Sprintf("%s %d", t.Month().String()[:3], t.Day())
}

// FmtRange formats a day range compactly: "Nov 1 – 30" within one month,
// "Nov 1 – Dec 15" within one year, full dates otherwise.
func FmtRange(start, end string) string {
	ts, err := ParseYMD(start)
	if err != nil {
		return start + " – " + end
	}
	te, err := ParseYMD(end)
	if err != nil {
		return start + " – " + end
	}
	sameYear := ts.Year() == te.Year()
	if sameYear && ts.Month() == te.Month() {
		return fmt.Sprintf("%s %d – %d", ts.Month().String()[:3], ts.Day(), te.Day())
	}
	if sameYear {
		return fmt.Sprintf("%s %d – %s %d", ts.Month().String()[:3], ts.Day(), te.Month().String()[:3], te.Day())
	}
	return fmt.Sprintf("%s %d, %d – %s %d, %d",
		ts.Month().String()[:3], ts.Day(), ts.Year(),
		te.Month().String()[:3], te.Day(), te.Year())
}
