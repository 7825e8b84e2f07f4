// Package engine implements the deterministic daily content rotation core.
//
// Each user gets one pool item per calendar day, per age group. The sequence
// is a pure function of a hash-seeded start offset and the number of days
// elapsed since the rotation began, so any client that can read the shared
// rotation state computes the same "today's item" without a stored schedule.
//
// The engine owns:
//   - calendar-date arithmetic in the user's timezone (dates.go)
//   - the stable start-offset hash (hash.go)
//   - age derivation from four data shapes (age.go)
//   - age bracket mapping (groups.go)
//   - rotation state lifecycle and index arithmetic (rotation.go, service.go)
//   - blocklist-avoiding circular search (blocklist.go)
//   - the birth-data migration prompt and submission rules (migration.go)
//
// The engine does NOT own persistence or transport. It talks to a
// ProfileStore and a PoolSource supplied by the caller, and the only
// coordination primitive it relies on is the store's atomic claim of a new
// rotation state (ProfileStore.ClaimRotationState). Everything else is
// best-effort merge writes tolerant of last-writer-wins.
package engine
