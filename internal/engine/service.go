package engine

import (
	"context"
	"log/slog"
)

// InitRetryQueue receives rotation-state candidates whose atomic claim
// failed transiently, so something outside the engine can re-attempt the
// claim later. Re-attempting is idempotent by construction: the claim
// never overwrites an existing valid state. The engine itself runs no
// timers; see internal/retry for the sweeper.
type InitRetryQueue interface {
	Enqueue(userID string, group GroupKey, candidate RotationState)
}

// TodayItem is the result of the full "get today's item" flow.
type TodayItem struct {
	Item       Item     `json:"item"`
	Index      int      `json:"index"`
	TotalItems int      `json:"total_items"`
	GroupKey   GroupKey `json:"group_key"`

	// Persisted is false when the rotation state backing this answer
	// could not be committed and a locally computed candidate was used
	// for this request only. The candidate has been queued for a later
	// idempotent re-claim; the caller must not treat it as durable.
	Persisted bool `json:"persisted"`

	// PromptMigration is true when the caller should ask the user for
	// exact birth data (see ShouldPromptMigration).
	PromptMigration bool `json:"prompt_migration"`
}

// Service wires the rotation engine to its collaborators. Construct one
// per process (or per request context) and inject the store client instead
// of reaching for ambient globals: the store is the only shared state.
type Service struct {
	store ProfileStore
	pools PoolSource
	clock Clock
	log   *slog.Logger
	retry InitRetryQueue // optional
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock replaces the wall clock (tests pin "today" with this).
func WithClock(c Clock) ServiceOption {
	return func(s *Service) { s.clock = c }
}

// WithRetryQueue attaches a queue for failed state-initialization claims.
func WithRetryQueue(q InitRetryQueue) ServiceOption {
	return func(s *Service) { s.retry = q }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// NewService creates a Service over the given store and pool source.
func NewService(store ProfileStore, pools PoolSource, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		pools: pools,
		clock: RealClock{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTodayItem runs the full flow: resolve timezone, derive age, map the
// bracket, read-or-init the rotation state, compute today's index, route
// around the blocklist, record the serve, return the item.
//
// Calling it twice on the same calendar day returns the identical item
// and index both times, even if the blocklist was mutated in between.
func (s *Service) GetTodayItem(ctx context.Context, userID string) (*TodayItem, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, transientError(userID, "read user profile", err)
	}
	if profile == nil {
		return nil, notFoundError(userID)
	}

	tz := ResolveTimezone(profile)
	if profile.Timezone == "" {
		// Lazy backfill so every later client resolves the same zone.
		// Best-effort: this request already has tz in hand.
		if mergeErr := s.store.MergeProfile(ctx, userID, ProfilePatch{Timezone: &tz}); mergeErr != nil {
			s.log.Warn("timezone backfill failed", "user", userID, "error", mergeErr)
		}
	}

	today, err := LocalDate(s.clock.Now(), tz)
	if err != nil {
		// Unloadable zone name in the profile. Fall back to UTC rather
		// than failing the request; the date may be off by one for this
		// user until the profile is fixed.
		s.log.Warn("falling back to UTC", "user", userID, "tz", tz, "error", err)
		today, _ = LocalDate(s.clock.Now(), "UTC")
	}

	age := DerivedAge(profile, today)
	group, ok := AgeToGroupKey(age)
	if !ok {
		return nil, invalidAgeError(userID, age)
	}
	if profile.ActiveGroup != group {
		// Bracket boundary crossed. The old group's rotation state stays
		// behind untouched in case the age calculation is later corrected.
		if mergeErr := s.store.MergeProfile(ctx, userID, ProfilePatch{ActiveGroup: &group}); mergeErr != nil {
			s.log.Warn("active group update failed", "user", userID, "group", group, "error", mergeErr)
		}
	}

	items, err := s.pools.LoadPool(group)
	if err != nil || len(items) == 0 {
		return nil, emptyPoolError(userID, group, err)
	}

	state, persisted := s.ensureState(ctx, profile, group, len(items), today)

	servedToday := state.LastServedDate == today && state.LastServedIndex >= 0
	index := ComputeIndex(state, today, len(items))
	if !servedToday {
		index = ApplyBlocklist(index, items, profile.BlockedRefs)
		if recErr := s.store.RecordServed(ctx, userID, group, today, index); recErr != nil {
			// Availability over strict consistency: losing this marker
			// only risks re-serving the same item once.
			s.log.Warn("record served failed", "user", userID, "group", group, "error", recErr)
		}
	}

	s.log.Debug("today's item resolved",
		"user", userID, "group", group, "date", today,
		"index", index, "persisted", persisted)

	return &TodayItem{
		Item:            items[index],
		Index:           index,
		TotalItems:      len(items),
		GroupKey:        group,
		Persisted:       persisted,
		PromptMigration: ShouldPromptMigration(profile, today),
	}, nil
}

// ensureState returns the rotation state for (user, group), initializing
// it exactly once via the store's atomic claim.
//
// A valid state from the profile read is returned unchanged, no
// re-initialization, ever. Otherwise the locally computed candidate and
// the store race: whichever writer claims the row first wins, and both
// observe the winner. If the claim itself fails (store unreachable) the
// candidate serves this one request, flagged non-durable, and is queued
// for an idempotent re-claim.
func (s *Service) ensureState(ctx context.Context, profile *UserProfile, group GroupKey, n int, today string) (RotationState, bool) {
	if existing, ok := profile.ContentState[group]; ok && existing.Valid() {
		return existing, true
	}

	candidate := NewRotationState(profile.UserID, group, n, today)
	winner, installed, err := s.store.ClaimRotationState(ctx, profile.UserID, group, candidate)
	if err != nil {
		s.log.Warn("rotation state claim failed, serving local candidate",
			"user", profile.UserID, "group", group, "error", err)
		if s.retry != nil {
			s.retry.Enqueue(profile.UserID, group, candidate)
		}
		return candidate, false
	}
	if installed {
		s.log.Info("rotation initialized",
			"user", profile.UserID, "group", group,
			"start_index", winner.StartIndex, "start_date", winner.StartDate)
	}
	return winner, true
}

// SubmitBirthMigration validates and persists exact birth data, promoting
// the profile to anniversary-based age derivation (strategy 2) for all
// subsequent calls. The age snapshot is the profile's raw age when
// present, else the currently derived age.
//
// Validation failures reject the input before any write.
func (s *Service) SubmitBirthMigration(ctx context.Context, userID string, month, day int) (*UserProfile, error) {
	if err := validateBirthInput(month, day); err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, transientError(userID, "read user profile", err)
	}
	if profile == nil {
		return nil, notFoundError(userID)
	}

	tz := ResolveTimezone(profile)
	today, err := LocalDate(s.clock.Now(), tz)
	if err != nil {
		today, _ = LocalDate(s.clock.Now(), "UTC")
	}

	ageAtSet := DerivedAge(profile, today)
	if profile.Age != nil {
		ageAtSet = *profile.Age
	}

	patch := ProfilePatch{
		BirthMonth: &month,
		BirthDay:   &day,
		AgeAtSet:   &ageAtSet,
		AgeSetAt:   &today,
	}
	if err := s.store.MergeProfile(ctx, userID, patch); err != nil {
		return nil, transientError(userID, "persist birth data", err)
	}

	s.log.Info("birth migration submitted", "user", userID, "month", month, "day", day)

	profile.BirthMonth = month
	profile.BirthDay = day
	profile.AgeAtSet = ageAtSet
	profile.AgeSetAt = today
	return profile, nil
}

// SkipBirthMigration defers the migration prompt for DefaultRePromptDays
// calendar days from today.
func (s *Service) SkipBirthMigration(ctx context.Context, userID string) error {
	return s.ScheduleRePrompt(ctx, userID, DefaultRePromptDays)
}

// ScheduleRePrompt sets MigrationSkipUntil to today plus the given number
// of calendar days. Plain date-string arithmetic, consistent with the
// rest of the engine's day handling.
func (s *Service) ScheduleRePrompt(ctx context.Context, userID string, days int) error {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return transientError(userID, "read user profile", err)
	}
	if profile == nil {
		return notFoundError(userID)
	}

	tz := ResolveTimezone(profile)
	today, err := LocalDate(s.clock.Now(), tz)
	if err != nil {
		today, _ = LocalDate(s.clock.Now(), "UTC")
	}
	until, err := AddDays(today, days)
	if err != nil {
		return transientError(userID, "compute re-prompt date", err)
	}

	if err := s.store.MergeProfile(ctx, userID, ProfilePatch{MigrationSkipUntil: &until}); err != nil {
		return transientError(userID, "persist migration deferral", err)
	}
	s.log.Info("migration prompt deferred", "user", userID, "until", until)
	return nil
}
