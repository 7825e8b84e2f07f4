package engine

import "context"

// UserProfile is the slice of the user record this engine reads and merges.
// The profile store owns the full record; fields not listed here are none
// of the engine's business.
//
// Exactly one of four age sources is authoritative, checked in priority
// order by DerivedAge:
//  1. DOB: exact date of birth ("" when unknown)
//  2. BirthMonth/BirthDay + AgeAtSet/AgeSetAt: age snapshot projected
//     forward by counting birthday anniversaries
//  3. Age + AgeSetAt: coarse snapshot advanced by whole elapsed years
//  4. Age alone: static, never ages
type UserProfile struct {
	UserID   string
	Timezone string // IANA name; "" until lazily backfilled on first read

	DOB        string // YYYY-MM-DD
	BirthMonth int    // 1..12; 0 when unset
	BirthDay   int    // 1..31; 0 when unset
	AgeAtSet   int    // age snapshot taken when BirthMonth/BirthDay were set
	AgeSetAt   string // YYYY-MM-DD the snapshot (strategy 2 or 3) was taken
	Age        *int   // nil when entirely absent

	// ActiveGroup caches the last-computed bracket. Recomputed and
	// overwritten whenever the derived age crosses a bracket boundary.
	ActiveGroup GroupKey

	// ContentState holds one rotation per bracket the user has ever
	// occupied. Entries are never deleted when a user ages out, so an
	// age correction or reversal lands back on the old sequence instead
	// of re-seeding it.
	ContentState map[GroupKey]RotationState

	// BlockedRefs lists content item refs to skip. Order is irrelevant
	// and duplicates are harmless; it is treated as a set.
	BlockedRefs []string

	// MigrationSkipUntil suppresses the birth-data prompt until this
	// date when the user deferred it. "" means never deferred.
	MigrationSkipUntil string
}

// HasBirthday reports whether the profile carries exact birth month/day data
// (strategy 2). Users without it are candidates for the migration prompt.
func (p *UserProfile) HasBirthday() bool {
	return p.BirthMonth != 0 && p.BirthDay != 0
}

// IsBlocked reports whether ref is in the profile's blocklist.
func (p *UserProfile) IsBlocked(ref string) bool {
	for _, r := range p.BlockedRefs {
		if r == ref {
			return true
		}
	}
	return false
}

// RotationState is the per-(user, group) rotation record.
//
// For a fixed group and pool size N, the unblocked index sequence is a pure
// function of elapsed days since StartDate: replaying the same (StartIndex,
// StartDate, today) always yields the same raw index. A RotationState is
// created at most once per (user, group), guaranteed by the store's atomic
// claim (ProfileStore.ClaimRotationState).
type RotationState struct {
	// StartIndex is StableHash(userID+":"+groupKey) mod N, fixed forever
	// once N was known at creation time.
	StartIndex int

	// StartDate is the calendar day, in the user's timezone, the rotation
	// began.
	StartDate string

	// LastServedDate is the calendar day of the most recent successful
	// serve; "" means never served.
	LastServedDate string

	// LastServedIndex is the index served on LastServedDate; -1 means none.
	LastServedIndex int
}

// Valid reports whether the state has been initialized. A valid state is
// never re-initialized, ever.
func (s RotationState) Valid() bool {
	return s.StartDate != "" && s.StartIndex >= 0
}

// ProfilePatch is a partial profile update for ProfileStore.MergeProfile.
// Nil fields are left untouched.
type ProfilePatch struct {
	Timezone           *string
	BirthMonth         *int
	BirthDay           *int
	AgeAtSet           *int
	AgeSetAt           *string
	ActiveGroup        *GroupKey
	MigrationSkipUntil *string
}

// Item is one entry of a content pool. Ref is the stable identifier the
// blocklist matches on; the display fields are opaque to the engine.
type Item struct {
	Ref     string `json:"ref"`
	Title   string `json:"title,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ProfileStore is the contract this engine requires from the shared user
// store. Implementations are expected to be reachable from multiple
// independent processes (browser tab, mobile context, server handler); the
// atomic claim is the only coordination primitive the engine relies on.
//
// All methods take a context; the store supplies its own timeout/retry
// policy, not the engine.
type ProfileStore interface {
	// GetProfile returns the profile, or (nil, nil) when the user does
	// not exist. A non-nil error means the store could not be read and
	// is treated as transient.
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	// MergeProfile applies a partial update without disturbing other
	// fields. Last-writer-wins is acceptable for every field it covers.
	MergeProfile(ctx context.Context, userID string, patch ProfilePatch) error

	// ClaimRotationState atomically installs candidate as the rotation
	// state for (userID, group) unless a valid state already exists, in
	// which case the existing state wins and is returned unchanged.
	// Returns the winning state and whether the candidate was installed.
	// Two racing claimers must observe the same winning state.
	ClaimRotationState(ctx context.Context, userID string, group GroupKey, candidate RotationState) (RotationState, bool, error)

	// RecordServed persists LastServedDate/LastServedIndex for one group,
	// merged without touching other groups. Best-effort: a lost write
	// only risks re-serving one item once.
	RecordServed(ctx context.Context, userID string, group GroupKey, date string, index int) error
}

// PoolSource is the contract this engine requires from the content store.
// Pools are ordered, cacheable, and assumed immutable per group for the
// lifetime of a rotation (a changed pool size invalidates the modulo
// arithmetic; documented risk, not handled here).
type PoolSource interface {
	LoadPool(group GroupKey) ([]Item, error)
}
