// Package retry re-attempts rotation-state claims that failed while the
// backing store was unreachable.
//
// The engine itself runs no timers: it hands failed candidates to an
// InitRetryQueue and moves on. This package is that queue, plus a
// cron-driven sweep that replays the claims. Replaying is always safe;
// the store's claim never overwrites an existing valid state, so a
// candidate that lost the race in the meantime is simply discarded.
package retry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/Uvecodes/daypool/internal/engine"
)

// Claimer is the slice of the store the sweeper needs.
type Claimer interface {
	ClaimRotationState(ctx context.Context, userID string, group engine.GroupKey, candidate engine.RotationState) (engine.RotationState, bool, error)
}

type pendingClaim struct {
	userID    string
	group     engine.GroupKey
	candidate engine.RotationState
}

// Sweeper queues failed claims and replays them on a cron schedule.
// Implements engine.InitRetryQueue.
type Sweeper struct {
	claimer Claimer
	log     *slog.Logger

	mu      sync.Mutex
	pending map[string]pendingClaim // keyed user:group, later enqueues win

	cron *cron.Cron
}

// NewSweeper creates a sweeper over the given claimer.
func NewSweeper(claimer Claimer, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		claimer: claimer,
		log:     log,
		pending: make(map[string]pendingClaim),
	}
}

// Enqueue registers a candidate whose claim failed. Re-enqueueing the same
// (user, group) replaces the previous candidate; since both were computed
// from the same hash the start index is identical anyway.
func (s *Sweeper) Enqueue(userID string, group engine.GroupKey, candidate engine.RotationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID+":"+string(group)] = pendingClaim{userID: userID, group: group, candidate: candidate}
	s.log.Debug("claim queued for retry", "user", userID, "group", group)
}

// Pending returns the number of queued claims.
func (s *Sweeper) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Sweep replays every queued claim once. Claims that fail again stay
// queued for the next sweep. Returns how many claims were resolved.
func (s *Sweeper) Sweep(ctx context.Context) int {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string]pendingClaim)
	s.mu.Unlock()

	resolved := 0
	for key, pc := range batch {
		_, installed, err := s.claimer.ClaimRotationState(ctx, pc.userID, pc.group, pc.candidate)
		if err != nil {
			s.log.Warn("claim retry failed, keeping queued", "user", pc.userID, "group", pc.group, "error", err)
			s.mu.Lock()
			// Keep the old candidate unless a fresh one arrived mid-sweep.
			if _, exists := s.pending[key]; !exists {
				s.pending[key] = pc
			}
			s.mu.Unlock()
			continue
		}
		resolved++
		if installed {
			s.log.Info("queued rotation state committed", "user", pc.userID, "group", pc.group)
		} else {
			s.log.Debug("queued candidate lost the race, discarded", "user", pc.userID, "group", pc.group)
		}
	}
	return resolved
}

// Start begins sweeping on the given cron spec (standard 5-field syntax).
func (s *Sweeper) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.log.Info("retry sweeper started", "spec", spec)
	return nil
}

// Stop halts the cron schedule. Queued claims are kept; a later Start or
// manual Sweep picks them up.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
