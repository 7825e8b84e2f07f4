package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Uvecodes/daypool/internal/engine"
	"github.com/Uvecodes/daypool/internal/testutil"
)

// ScheduleEntry records what one calendar day resolved to.
type ScheduleEntry struct {
	Date     string `json:"date"`
	GroupKey string `json:"group_key"`
	Index    int    `json:"index"`
	Ref      string `json:"ref"`
}

// Result holds the outcome of a scenario run.
type Result struct {
	// Schedule has one entry per day in the scenario's span, in order.
	Schedule []ScheduleEntry

	// FinalProfile is the stored profile after the last day, including
	// any rotation state and lazily backfilled fields the run produced.
	FinalProfile *engine.UserProfile
}

// Run executes a scenario: seed an in-memory store with the profile and
// blocklist, pin the clock to the first day, then resolve today's item
// once per day, advancing the clock between days.
//
// Any day failing to resolve aborts the run; scenarios that expect
// errors are tested directly against the engine, not through the harness.
func Run(scenario *Scenario) (*Result, error) {
	store := NewMemStore()
	profile := scenario.Profile.profile()
	profile.BlockedRefs = append([]string(nil), scenario.Blocked...)
	store.Put(profile)

	clock, err := testutil.NewFixedClockAt(scenario.Days.From)
	if err != nil {
		return nil, fmt.Errorf("invalid days.from: %w", err)
	}

	svc := engine.NewService(store, scenario.pools(),
		engine.WithClock(clock),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx := context.Background()
	schedule := make([]ScheduleEntry, 0, scenario.Days.Count)
	day := scenario.Days.From
	for i := 0; i < scenario.Days.Count; i++ {
		item, err := svc.GetTodayItem(ctx, profile.UserID)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", day, err)
		}
		schedule = append(schedule, ScheduleEntry{
			Date:     day,
			GroupKey: string(item.GroupKey),
			Index:    item.Index,
			Ref:      item.Item.Ref,
		})
		clock.AdvanceDays(1)
		next, err := engine.AddDays(day, 1)
		if err != nil {
			return nil, fmt.Errorf("advance from %s: %w", day, err)
		}
		day = next
	}

	final, err := store.GetProfile(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	return &Result{Schedule: schedule, FinalProfile: final}, nil
}
