package harness

import (
	"context"
	"fmt"
	"sync"

	"github.com/Uvecodes/daypool/internal/engine"
)

// MemStore is an in-memory engine.ProfileStore for scenario runs. It
// mirrors the SQLite store's claim semantics (first writer wins, losers
// adopt the existing state) without touching disk.
type MemStore struct {
	mu       sync.Mutex
	profiles map[string]*engine.UserProfile
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{profiles: make(map[string]*engine.UserProfile)}
}

// Put installs a profile, replacing any existing one with the same user ID.
func (m *MemStore) Put(p *engine.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	if cp.ContentState == nil {
		cp.ContentState = make(map[engine.GroupKey]engine.RotationState)
	}
	m.profiles[cp.UserID] = &cp
}

// GetProfile returns a copy of the stored profile, or (nil, nil) when the
// user does not exist.
func (m *MemStore) GetProfile(ctx context.Context, userID string) (*engine.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.ContentState = make(map[engine.GroupKey]engine.RotationState, len(p.ContentState))
	for k, v := range p.ContentState {
		cp.ContentState[k] = v
	}
	cp.BlockedRefs = append([]string(nil), p.BlockedRefs...)
	return &cp, nil
}

// MergeProfile applies the non-nil patch fields to the stored profile.
func (m *MemStore) MergeProfile(ctx context.Context, userID string, patch engine.ProfilePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	if patch.Timezone != nil {
		p.Timezone = *patch.Timezone
	}
	if patch.BirthMonth != nil {
		p.BirthMonth = *patch.BirthMonth
	}
	if patch.BirthDay != nil {
		p.BirthDay = *patch.BirthDay
	}
	if patch.AgeAtSet != nil {
		p.AgeAtSet = *patch.AgeAtSet
	}
	if patch.AgeSetAt != nil {
		p.AgeSetAt = *patch.AgeSetAt
	}
	if patch.ActiveGroup != nil {
		p.ActiveGroup = *patch.ActiveGroup
	}
	if patch.MigrationSkipUntil != nil {
		p.MigrationSkipUntil = *patch.MigrationSkipUntil
	}
	return nil
}

// ClaimRotationState installs candidate unless a valid state already
// exists for (userID, group), in which case the existing state wins.
func (m *MemStore) ClaimRotationState(ctx context.Context, userID string, group engine.GroupKey, candidate engine.RotationState) (engine.RotationState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return engine.RotationState{}, false, fmt.Errorf("user not found: %s", userID)
	}
	if existing, ok := p.ContentState[group]; ok && existing.Valid() {
		return existing, false, nil
	}
	p.ContentState[group] = candidate
	return candidate, true, nil
}

// RecordServed updates the serve marker for one group without touching
// other groups.
func (m *MemStore) RecordServed(ctx context.Context, userID string, group engine.GroupKey, date string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	state, ok := p.ContentState[group]
	if !ok {
		return fmt.Errorf("no rotation state for %s/%s", userID, group)
	}
	state.LastServedDate = date
	state.LastServedIndex = index
	p.ContentState[group] = state
	return nil
}

var _ engine.ProfileStore = (*MemStore)(nil)

// staticPools is a fixed in-memory engine.PoolSource.
type staticPools map[engine.GroupKey][]engine.Item

// LoadPool returns the configured items for group.
func (p staticPools) LoadPool(group engine.GroupKey) ([]engine.Item, error) {
	items, ok := p[group]
	if !ok {
		return nil, fmt.Errorf("no pool configured for bracket %s", group)
	}
	return items, nil
}
