package engine

import (
	"fmt"
	"math"
	"strconv"
)

// Average-year divisors used to turn elapsed days into whole years.
// Strategy 1 (exact DOB) uses the Julian year; strategy 3 (coarse
// snapshot) uses the Gregorian mean year. Both values are preserved from
// the system this engine replaces; changing either shifts ages by one
// around anniversaries for long-lived profiles.
const (
	julianYearDays    = 365.25
	gregorianYearDays = 365.2425
)

// DerivedAge computes the user's current integer age on the given
// tz-resolved calendar day, using the first matching strategy:
//
//  1. Exact DOB: floor(elapsed days / 365.25).
//  2. Birthday + snapshot: AgeAtSet plus the number of birthday
//     anniversaries between the snapshot date and today.
//  3. Coarse snapshot: Age plus floor(elapsed days / 365.2425).
//  4. Raw field: Age as-is, or 0 if entirely absent.
//
// Strategy order is precedence, not freshness: an exact DOB wins over a
// more recently set birthday snapshot. Preserved as observed, do not
// reorder without confirming intended precedence.
func DerivedAge(p *UserProfile, today string) int {
	if p == nil {
		return 0
	}
	if p.DOB != "" {
		if days, err := DaysBetween(p.DOB, today); err == nil {
			return int(math.Floor(float64(days) / julianYearDays))
		}
	}
	if p.HasBirthday() && p.AgeSetAt != "" {
		return p.AgeAtSet + CountAnniversaries(p.AgeSetAt, today, p.BirthMonth, p.BirthDay)
	}
	if p.Age != nil && p.AgeSetAt != "" {
		if days, err := DaysBetween(p.AgeSetAt, today); err == nil {
			return *p.Age + int(math.Floor(float64(days)/gregorianYearDays))
		}
	}
	if p.Age != nil {
		return *p.Age
	}
	return 0
}

// CountAnniversaries counts occurrences of the given month/day from start
// through end: the first occurrence considered is the next one on or after
// start (inclusive), and every occurrence up to end (inclusive) counts.
// Comparison is lexicographic on zero-padded ISO date strings, which is
// safe because the format sorts chronologically.
//
// Leap-day rule: a birthday of Feb-29 is counted as Feb-28 in every year.
// Non-leap years have no Feb-29, and counting Feb-28 uniformly avoids
// skipped anniversaries. This is a deliberate simplification, not strict
// "observed on Mar-1" semantics.
//
// The result is floored at 0 (end before start counts nothing).
func CountAnniversaries(start, end string, month, day int) int {
	if month == 2 && day == 29 {
		day = 28
	}
	if end < start || len(start) < 4 {
		return 0
	}
	year, err := strconv.Atoi(start[:4])
	if err != nil {
		return 0
	}
	if anniversaryOn(year, month, day) < start {
		year++
	}
	count := 0
	for anniversaryOn(year, month, day) <= end {
		count++
		year++
	}
	return count
}

func anniversaryOn(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
