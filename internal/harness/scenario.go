package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/livestyle/internal/event"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is an optional fixed run id. If empty, "test-run-default" is
	// used.
	RunID string `yaml:"run_id,omitempty"`

	// Events are applied in order, one engine step each.
	Events []event.Record `yaml:"events"`

	// Assertions are checked against the trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of state, changed, unchanged or messages.
	Type string `yaml:"type"`

	// Path is a dot path into the final snapshot (state).
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path (state).
	Equals any `yaml:"equals,omitempty"`

	// Absent requires Path to resolve to nothing (state).
	Absent bool `yaml:"absent,omitempty"`

	// Steps are 0-based event indexes (changed, unchanged).
	Steps []int `yaml:"steps,omitempty"`

	// Names are the expected message names in queue order (messages).
	Names []string `yaml:"names,omitempty"`
}

// Assertion type constants.
const (
	AssertState     = "state"
	AssertChanged   = "changed"
	AssertUnchanged = "unchanged"
	AssertMessages  = "messages"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
// It stops at the first invalid file.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Events) == 0 {
		return errors.New("events list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return errors.New("assertions list is required and must be non-empty")
	}

	if _, err := event.Convert(s.Events); err != nil {
		return err
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], len(s.Events)); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, events int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertState:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for state", index)
		}
		if a.Absent && a.Equals != nil {
			return fmt.Errorf("assertions[%d]: equals and absent are mutually exclusive", index)
		}
		if !a.Absent && a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals or absent is required for state", index)
		}
	case AssertChanged, AssertUnchanged:
		if len(a.Steps) == 0 {
			return fmt.Errorf("assertions[%d]: steps list is required for %s", index, a.Type)
		}
		for _, step := range a.Steps {
			if step < 0 || step >= events {
				return fmt.Errorf("assertions[%d]: step %d out of range [0, %d)", index, step, events)
			}
		}
	case AssertMessages:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: names is required for messages (use [] for none)", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
