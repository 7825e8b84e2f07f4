package engine

import (
	"fmt"
	"time"
)

// isoDate is the calendar date layout used everywhere in this engine.
// Zero-padded ISO dates compare correctly as plain strings, which the
// anniversary counter and migration gating rely on.
const isoDate = "2006-01-02"

// ResolveTimezone returns the timezone the engine should compute "today" in:
// the profile's tz if set, else the runtime's local IANA zone, else "UTC".
//
// time.Local.String() reports "Local" when the zone has no IANA name (e.g.
// no TZ env and an unreadable /etc/localtime); that is not a loadable zone
// name, so it falls through to UTC.
func ResolveTimezone(p *UserProfile) string {
	if p != nil && p.Timezone != "" {
		return p.Timezone
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}

// LocalDate renders t as a YYYY-MM-DD calendar date in the given IANA
// timezone. Formatting in the loaded location is DST-safe: the rendered
// date is the civil date at that instant in that zone, with no ±1 day
// drift at transition boundaries.
func LocalDate(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return t.In(loc).Format(isoDate), nil
}

// DaysBetween returns the number of whole days from dateA to dateB.
//
// Both arguments are parsed as UTC midnight of the given calendar date.
// The inputs are already timezone-resolved date strings, so applying a
// timezone here would double-count it. UTC has no DST, so the difference
// of two UTC midnights is always an exact multiple of 24h.
//
// The result is negative when dateB < dateA. Callers clamp where a day
// offset cannot be negative (e.g. rotation day numbers).
func DaysBetween(dateA, dateB string) (int, error) {
	a, err := time.Parse(isoDate, dateA)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", dateA, err)
	}
	b, err := time.Parse(isoDate, dateB)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", dateB, err)
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// AddDays returns the calendar date n days after date. Plain calendar
// arithmetic on the date string; no timezone is involved.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(isoDate, date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return t.AddDate(0, 0, n).Format(isoDate), nil
}
