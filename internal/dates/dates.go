package dates

import (
	"strings"
	"time"
)

// ISO is the canonical on-disk layout for review dates.
const ISO = "2006-01-02"

// Today returns the current calendar date in the local time zone with the
// time of day stripped. Stripping happens before any formatting so a later
// ISO rendering cannot drift a day across the UTC offset.
func Today() time.Time {
	return Strip(time.Now())
}

// Strip drops the time-of-day component, keeping the calendar date in t's
// location.
func Strip(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Parse reads a calendar date in either YYYY-MM-DD or DD/MM/YYYY form.
// It reports ok=false for anything unparseable, including impossible
// calendar dates; it never fails hard.
func Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{ISO, "02/01/2006"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return Strip(t), true
		}
	}
	return time.Time{}, false
}

// DaysBetween returns the whole number of days from a to b (b minus a).
// Both values are reduced to calendar dates and re-anchored in UTC first,
// so daylight-saving transitions cannot shift the count.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Format renders a date-only value in the canonical ISO layout.
func Format(t time.Time) string {
	return t.Format(ISO)
}
