package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/Uvecodes/daypool/internal/engine"
)

func TestProfile_CreateAndGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	age := 8
	in := &engine.UserProfile{
		UserID:      "u1",
		Timezone:    "Europe/Paris",
		DOB:         "2016-03-05",
		ActiveGroup: engine.Group7to10,
		Age:         &age,
	}
	if err := s.CreateProfile(ctx, in); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetProfile() returned nil for existing user")
	}
	if got.Timezone != "Europe/Paris" || got.DOB != "2016-03-05" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Age == nil || *got.Age != 8 {
		t.Errorf("age not preserved: %+v", got.Age)
	}
	if got.ActiveGroup != engine.Group7to10 {
		t.Errorf("active group = %q", got.ActiveGroup)
	}
	if len(got.ContentState) != 0 {
		t.Errorf("fresh profile should have no rotation states, got %d", len(got.ContentState))
	}
}

func TestProfile_NilAgeStoredAsNull(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateProfile(ctx, &engine.UserProfile{UserID: "u1"}); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if got.Age != nil {
		t.Errorf("expected absent age, got %d", *got.Age)
	}
}

func TestProfile_GetMissingReturnsNilNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetProfile(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil profile for missing user, got %+v", got)
	}
}

func TestProfile_MergeTouchesOnlyPatchedFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	age := 8
	if err := s.CreateProfile(ctx, &engine.UserProfile{UserID: "u1", Timezone: "UTC", Age: &age}); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}

	month, day, ageAtSet, setAt := 5, 14, 8, "2024-01-13"
	patch := engine.ProfilePatch{
		BirthMonth: &month,
		BirthDay:   &day,
		AgeAtSet:   &ageAtSet,
		AgeSetAt:   &setAt,
	}
	if err := s.MergeProfile(ctx, "u1", patch); err != nil {
		t.Fatalf("MergeProfile() failed: %v", err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if got.BirthMonth != 5 || got.BirthDay != 14 || got.AgeSetAt != "2024-01-13" {
		t.Errorf("patched fields not applied: %+v", got)
	}
	if got.Timezone != "UTC" {
		t.Errorf("unpatched timezone was disturbed: %q", got.Timezone)
	}
	if got.Age == nil || *got.Age != 8 {
		t.Errorf("unpatched age was disturbed: %+v", got.Age)
	}
}

func TestProfile_MergeEmptyPatchIsNoOp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateProfile(ctx, &engine.UserProfile{UserID: "u1"}); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	if err := s.MergeProfile(ctx, "u1", engine.ProfilePatch{}); err != nil {
		t.Errorf("empty patch should be a no-op, got %v", err)
	}
}

func TestProfile_MergeMissingUserFails(t *testing.T) {
	s := openTestStore(t)

	tz := "UTC"
	err := s.MergeProfile(context.Background(), "ghost", engine.ProfilePatch{Timezone: &tz})
	if err == nil {
		t.Error("expected error merging into missing user")
	}
}

func TestProfile_BlockUnblockRefs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateProfile(ctx, &engine.UserProfile{UserID: "u1"}); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}

	for _, ref := range []string{"r2", "r1", "r2"} { // duplicate block is harmless
		if err := s.BlockRef(ctx, "u1", ref); err != nil {
			t.Fatalf("BlockRef(%s) failed: %v", ref, err)
		}
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if !reflect.DeepEqual(got.BlockedRefs, []string{"r1", "r2"}) {
		t.Errorf("blocked refs = %v", got.BlockedRefs)
	}

	if err := s.UnblockRef(ctx, "u1", "r2"); err != nil {
		t.Fatalf("UnblockRef() failed: %v", err)
	}
	if err := s.UnblockRef(ctx, "u1", "never-blocked"); err != nil {
		t.Errorf("unblocking a non-blocked ref should be a no-op, got %v", err)
	}

	got, err = s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if !reflect.DeepEqual(got.BlockedRefs, []string{"r1"}) {
		t.Errorf("blocked refs after unblock = %v", got.BlockedRefs)
	}
}

func TestProfile_SetAge(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateProfile(ctx, &engine.UserProfile{UserID: "u1"}); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	if err := s.SetAge(ctx, "u1", 9, "2024-01-13"); err != nil {
		t.Fatalf("SetAge() failed: %v", err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if got.Age == nil || *got.Age != 9 || got.AgeSetAt != "2024-01-13" {
		t.Errorf("age snapshot not stored: %+v", got)
	}
}
