package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// ScheduleSnapshot is the serialized form compared against golden files.
// Field order is fixed by the struct, so the encoding is deterministic.
type ScheduleSnapshot struct {
	ScenarioName string          `json:"scenario_name"`
	UserID       string          `json:"user_id"`
	Schedule     []ScheduleEntry `json:"schedule"`
}

// RunWithGolden executes a scenario and compares the schedule against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario itself fails to run; a schedule that
// diverges from the golden file fails the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario, result)
}

// AssertGolden compares an already-obtained result against the scenario's
// golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snapshot := ScheduleSnapshot{
		ScenarioName: scenario.Name,
		UserID:       scenario.Profile.UserID,
		Schedule:     result.Schedule,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
