package store

import (
	"context"
	"sync"
	"testing"

	"github.com/Uvecodes/daypool/internal/engine"
)

func seedUser(t *testing.T, s *Store, userID string) {
	t.Helper()
	if err := s.CreateProfile(context.Background(), &engine.UserProfile{UserID: userID}); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
}

func TestClaimRotationState_FirstClaimInstalls(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	candidate := engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-10")
	got, installed, err := s.ClaimRotationState(ctx, "u1", engine.Group7to10, candidate)
	if err != nil {
		t.Fatalf("ClaimRotationState() failed: %v", err)
	}
	if !installed {
		t.Error("first claim should install the candidate")
	}
	if got != candidate {
		t.Errorf("winner = %+v, want candidate %+v", got, candidate)
	}
}

func TestClaimRotationState_SecondClaimAdoptsExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	first := engine.RotationState{StartIndex: 3, StartDate: "2024-01-10", LastServedIndex: -1}
	if _, _, err := s.ClaimRotationState(ctx, "u1", engine.Group7to10, first); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	// A later client computes a different candidate (different day, so a
	// different start date). It must lose and adopt the server's state.
	loser := engine.RotationState{StartIndex: 5, StartDate: "2024-01-12", LastServedIndex: -1}
	got, installed, err := s.ClaimRotationState(ctx, "u1", engine.Group7to10, loser)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if installed {
		t.Error("second claim must not install")
	}
	if got != first {
		t.Errorf("second claim observed %+v, want the first state %+v", got, first)
	}
}

func TestClaimRotationState_ConcurrentClaimsAgree(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	const claimers = 8
	results := make([]engine.RotationState, claimers)
	installs := make([]bool, claimers)
	errs := make([]error, claimers)

	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Each claimer computes its own candidate, as racing browser
			// tabs and the server would.
			cand := engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-10")
			results[i], installs[i], errs[i] = s.ClaimRotationState(ctx, "u1", engine.Group7to10, cand)
		}(i)
	}
	wg.Wait()

	installed := 0
	for i := 0; i < claimers; i++ {
		if errs[i] != nil {
			t.Fatalf("claimer %d failed: %v", i, errs[i])
		}
		if installs[i] {
			installed++
		}
		if results[i] != results[0] {
			t.Errorf("claimer %d observed %+v, claimer 0 observed %+v", i, results[i], results[0])
		}
	}
	if installed != 1 {
		t.Errorf("%d claims installed, want exactly 1", installed)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM rotation_states WHERE user_id = 'u1'`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("%d rotation state rows persisted, want exactly 1", count)
	}
}

func TestClaimRotationState_PerGroupIndependence(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	a := engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-10")
	b := engine.NewRotationState("u1", engine.Group11to13, 5, "2024-06-01")
	if _, _, err := s.ClaimRotationState(ctx, "u1", engine.Group7to10, a); err != nil {
		t.Fatalf("claim group 7-10 failed: %v", err)
	}
	if _, _, err := s.ClaimRotationState(ctx, "u1", engine.Group11to13, b); err != nil {
		t.Fatalf("claim group 11-13 failed: %v", err)
	}

	p, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if len(p.ContentState) != 2 {
		t.Fatalf("expected 2 rotation states, got %d", len(p.ContentState))
	}
	if p.ContentState[engine.Group7to10] != a || p.ContentState[engine.Group11to13] != b {
		t.Errorf("states mixed up: %+v", p.ContentState)
	}
}

func TestRecordServed_MergesWithoutDisturbingOtherGroups(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	a := engine.NewRotationState("u1", engine.Group7to10, 7, "2024-01-10")
	b := engine.NewRotationState("u1", engine.Group11to13, 5, "2024-01-10")
	if _, _, err := s.ClaimRotationState(ctx, "u1", engine.Group7to10, a); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ClaimRotationState(ctx, "u1", engine.Group11to13, b); err != nil {
		t.Fatal(err)
	}

	if err := s.RecordServed(ctx, "u1", engine.Group7to10, "2024-01-13", 6); err != nil {
		t.Fatalf("RecordServed() failed: %v", err)
	}

	p, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	st := p.ContentState[engine.Group7to10]
	if st.LastServedDate != "2024-01-13" || st.LastServedIndex != 6 {
		t.Errorf("served marker not recorded: %+v", st)
	}
	other := p.ContentState[engine.Group11to13]
	if other.LastServedDate != "" || other.LastServedIndex != -1 {
		t.Errorf("other group's state disturbed: %+v", other)
	}
	if st.StartIndex != a.StartIndex || st.StartDate != a.StartDate {
		t.Errorf("start fields disturbed: %+v", st)
	}
}

func TestRecordServed_MissingStateFails(t *testing.T) {
	s := openTestStore(t)
	seedUser(t, s, "u1")

	err := s.RecordServed(context.Background(), "u1", engine.Group7to10, "2024-01-13", 2)
	if err == nil {
		t.Error("expected error recording serve without a rotation state")
	}
}
