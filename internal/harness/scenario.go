package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Uvecodes/daypool/internal/engine"
)

// Scenario defines a conformance test scenario.
// Scenarios pin a user profile, a set of content pools, and a span of
// calendar days, then execute the daily item flow once per day.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile is the user the schedule is computed for.
	Profile ProfileSpec `yaml:"profile"`

	// Pools maps bracket keys ("4-6", "7-10", ...) to ordered item lists.
	// Every bracket the profile can occupy during the span must be present.
	Pools map[string][]ItemSpec `yaml:"pools"`

	// Blocked lists item refs excluded for this user from day one.
	Blocked []string `yaml:"blocked,omitempty"`

	// Days is the span of calendar days to walk.
	Days DaySpan `yaml:"days"`
}

// ProfileSpec is the YAML-facing shape of a user profile. Zero-valued
// fields are left unset, so a scenario states only the age source it
// exercises.
type ProfileSpec struct {
	UserID     string `yaml:"user_id"`
	Timezone   string `yaml:"timezone,omitempty"`
	DOB        string `yaml:"dob,omitempty"`
	BirthMonth int    `yaml:"birth_month,omitempty"`
	BirthDay   int    `yaml:"birth_day,omitempty"`
	AgeAtSet   int    `yaml:"age_at_set,omitempty"`
	AgeSetAt   string `yaml:"age_set_at,omitempty"`
	Age        *int   `yaml:"age,omitempty"`
}

// ItemSpec is one pool entry.
type ItemSpec struct {
	Ref   string `yaml:"ref"`
	Title string `yaml:"title,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
}

// DaySpan is an inclusive run of calendar days starting at From.
type DaySpan struct {
	From  string `yaml:"from"`
	Count int    `yaml:"count"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Profile.UserID == "" {
		return fmt.Errorf("profile.user_id is required")
	}
	if len(s.Pools) == 0 {
		return fmt.Errorf("pools map is required and must be non-empty")
	}
	for group, items := range s.Pools {
		if !engine.ValidGroupKey(group) {
			return fmt.Errorf("pools: unknown bracket %q", group)
		}
		if len(items) == 0 {
			return fmt.Errorf("pools[%s]: at least one item is required", group)
		}
		for i, item := range items {
			if item.Ref == "" {
				return fmt.Errorf("pools[%s][%d]: ref is required", group, i)
			}
		}
	}
	if s.Days.From == "" {
		return fmt.Errorf("days.from is required")
	}
	if s.Days.Count < 1 {
		return fmt.Errorf("days.count must be at least 1")
	}
	return nil
}

// profile converts the YAML spec into the engine's profile type.
func (p ProfileSpec) profile() *engine.UserProfile {
	return &engine.UserProfile{
		UserID:     p.UserID,
		Timezone:   p.Timezone,
		DOB:        p.DOB,
		BirthMonth: p.BirthMonth,
		BirthDay:   p.BirthDay,
		AgeAtSet:   p.AgeAtSet,
		AgeSetAt:   p.AgeSetAt,
		Age:        p.Age,
	}
}

// pools converts the YAML pool map into an engine.PoolSource.
func (s *Scenario) pools() staticPools {
	out := make(staticPools, len(s.Pools))
	for group, specs := range s.Pools {
		items := make([]engine.Item, len(specs))
		for i, spec := range specs {
			items[i] = engine.Item{Ref: spec.Ref, Title: spec.Title, Kind: spec.Kind}
		}
		out[engine.GroupKey(group)] = items
	}
	return out
}
