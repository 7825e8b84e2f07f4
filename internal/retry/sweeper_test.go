package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uvecodes/daypool/internal/engine"
)

// flakyClaimer fails every claim until healed.
type flakyClaimer struct {
	mu     sync.Mutex
	broken bool
	states map[string]engine.RotationState
	calls  int
}

func newFlakyClaimer(broken bool) *flakyClaimer {
	return &flakyClaimer{broken: broken, states: make(map[string]engine.RotationState)}
}

func (c *flakyClaimer) ClaimRotationState(_ context.Context, userID string, group engine.GroupKey, candidate engine.RotationState) (engine.RotationState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.broken {
		return engine.RotationState{}, false, errors.New("store down")
	}
	key := userID + ":" + string(group)
	if existing, ok := c.states[key]; ok {
		return existing, false, nil
	}
	c.states[key] = candidate
	return candidate, true, nil
}

func (c *flakyClaimer) heal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken = false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_ResolvesQueuedClaims(t *testing.T) {
	claimer := newFlakyClaimer(false)
	s := NewSweeper(claimer, testLogger())

	cand := engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-13")
	s.Enqueue("u1", engine.Group7to10, cand)
	require.Equal(t, 1, s.Pending())

	resolved := s.Sweep(context.Background())
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, cand, claimer.states["u1:7-10"])
}

func TestSweeper_KeepsFailedClaimsQueued(t *testing.T) {
	claimer := newFlakyClaimer(true)
	s := NewSweeper(claimer, testLogger())

	s.Enqueue("u1", engine.Group7to10, engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-13"))

	assert.Equal(t, 0, s.Sweep(context.Background()))
	assert.Equal(t, 1, s.Pending(), "failed claim must stay queued")

	claimer.heal()
	assert.Equal(t, 1, s.Sweep(context.Background()))
	assert.Equal(t, 0, s.Pending())
}

func TestSweeper_DedupesByUserAndGroup(t *testing.T) {
	claimer := newFlakyClaimer(false)
	s := NewSweeper(claimer, testLogger())

	cand := engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-13")
	s.Enqueue("u1", engine.Group7to10, cand)
	s.Enqueue("u1", engine.Group7to10, cand)
	s.Enqueue("u1", engine.Group11to13, engine.NewRotationState("u1", engine.Group11to13, 3, "2024-01-13"))

	assert.Equal(t, 2, s.Pending())
}

func TestSweeper_LosingCandidateDiscarded(t *testing.T) {
	claimer := newFlakyClaimer(false)
	// Another client already initialized this rotation.
	winner := engine.RotationState{StartIndex: 2, StartDate: "2024-01-10", LastServedIndex: -1}
	claimer.states["u1:7-10"] = winner

	s := NewSweeper(claimer, testLogger())
	s.Enqueue("u1", engine.Group7to10, engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-13"))

	assert.Equal(t, 1, s.Sweep(context.Background()))
	assert.Equal(t, 0, s.Pending())
	// The pre-existing state survived the replayed claim.
	assert.Equal(t, winner, claimer.states["u1:7-10"])
}

func TestSweeper_StartRejectsBadSpec(t *testing.T) {
	s := NewSweeper(newFlakyClaimer(false), testLogger())
	assert.Error(t, s.Start("not a cron spec"))
}

func TestSweeper_StartStop(t *testing.T) {
	s := NewSweeper(newFlakyClaimer(false), testLogger())
	require.NoError(t, s.Start("* * * * *"))
	s.Stop()
}
