package engine

// DefaultRePromptDays is how long a deferred migration prompt stays
// suppressed.
const DefaultRePromptDays = 7

// MigrationDecision is the two-outcome result of showing the birth-data
// prompt. The UI collects it however it likes (modal, CLI flags, API
// body) and hands the engine the decision; the engine never drives
// prompting itself.
type MigrationDecision struct {
	Saved bool // false means the user skipped
	Month int  // 1..12, meaningful only when Saved
	Day   int  // 1..31, meaningful only when Saved
}

// ShouldPromptMigration reports whether the user should be asked to supply
// exact birth data on the given day: true iff the profile lacks birth
// month/day AND no deferral is in effect (MigrationSkipUntil unset, or
// today has reached it). Date comparison is lexicographic on ISO dates.
func ShouldPromptMigration(p *UserProfile, today string) bool {
	if p == nil || p.HasBirthday() {
		return false
	}
	return p.MigrationSkipUntil == "" || today >= p.MigrationSkipUntil
}

// validateBirthInput checks migration input before any write happens.
//
// Day is range-checked against [1,31] only; there is no per-month
// maximum, so Feb 31 passes validation. Preserved from the system this
// engine replaces; flagged as a candidate bug, awaiting a product call.
func validateBirthInput(month, day int) error {
	if month < 1 || month > 12 {
		return validationError("birth month must be between 1 and 12")
	}
	if day < 1 || day > 31 {
		return validationError("birth day must be between 1 and 31")
	}
	return nil
}
