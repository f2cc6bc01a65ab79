package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/livestyle/internal/canon"
)

// Snapshot captures what a scenario run produced: the step trace and the
// final state. Digests are left out so golden files stay readable and
// survive hash changes that do not change the state itself.
type Snapshot struct {
	ScenarioName string
	RunID        string
	Trace        []TraceEvent
	State        map[string]any
}

// toCanonicalMap converts a Snapshot to the map form canon.Marshal accepts.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		steps[i] = map[string]any{
			"seq":     ev.Seq,
			"type":    ev.Type,
			"changed": ev.Changed,
		}
	}
	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         steps,
		"state":         s.State,
	}
	if s.RunID != "" {
		result["run_id"] = s.RunID
	}
	return result
}

// MarshalGolden returns the golden file form of s: canonical JSON indented
// two spaces, with a trailing newline.
func (s *Snapshot) MarshalGolden() ([]byte, error) {
	data, err := canon.Marshal(s.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Assertion failures and golden
// mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	return AssertGolden(t, scenario.Name, scenario.RunID, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName, runID string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		RunID:        runID,
		Trace:        result.Trace,
		State:        result.State,
	}
	data, err := snapshot.MarshalGolden()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
