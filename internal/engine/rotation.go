package engine

// NewRotationState builds the candidate state for a rotation that starts
// today. The start offset is StableHash(userID+":"+groupKey) mod N, so
// every client derives the same candidate independently; the store's
// atomic claim then decides which single candidate becomes durable.
func NewRotationState(userID string, group GroupKey, n int, today string) RotationState {
	return RotationState{
		StartIndex:      int(StableHash(rotationSeed(userID, group)) % uint32(n)),
		StartDate:       today,
		LastServedDate:  "",
		LastServedIndex: -1,
	}
}

// ComputeIndex returns today's raw pool index for the state.
//
// If the state already served today (LastServedDate == today with a real
// index), it short-circuits to LastServedIndex. This is what makes
// "today's item" idempotent within a single day even if the blocklist or
// pool changes mid-day: the second call replays the first call's answer
// instead of recomputing it.
//
// Otherwise the index is (StartIndex + dayNumber) mod N, where dayNumber
// is the days elapsed since StartDate, clamped at 0 (a client whose local
// calendar lags the start date must not walk the rotation backwards).
func ComputeIndex(state RotationState, today string, n int) int {
	if state.LastServedDate == today && state.LastServedIndex >= 0 {
		return state.LastServedIndex
	}
	days, err := DaysBetween(state.StartDate, today)
	if err != nil || days < 0 {
		days = 0
	}
	return (state.StartIndex + days) % n
}
