package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/livestyle/internal/canon"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			mark := " "
			if ev.Changed {
				mark = "*"
			}
			fmt.Fprintf(&buf, "  [%d] %s %s\n", ev.Index, mark, ev.Type)
		}
	}

	return buf.String()
}

// assertState looks up assertion.Path in the snapshot and compares the
// canonical encodings of the expected and actual values.
func assertState(state map[string]any, assertion Assertion) error {
	actual, found := lookupPath(state, assertion.Path)

	if assertion.Absent {
		if found {
			return &AssertionError{
				Type:     AssertState,
				Expected: fmt.Sprintf("%s to be absent", assertion.Path),
				Actual:   fmt.Sprintf("%s = %s", assertion.Path, render(actual)),
			}
		}
		return nil
	}

	if !found {
		return &AssertionError{
			Type:     AssertState,
			Expected: fmt.Sprintf("%s = %s", assertion.Path, render(assertion.Equals)),
			Actual:   "path not found",
		}
	}

	want, err := canon.Marshal(normalize(assertion.Equals))
	if err != nil {
		return fmt.Errorf("state assertion %s: expected value: %w", assertion.Path, err)
	}
	got, err := canon.Marshal(actual)
	if err != nil {
		return fmt.Errorf("state assertion %s: actual value: %w", assertion.Path, err)
	}
	if string(want) != string(got) {
		return &AssertionError{
			Type:     AssertState,
			Expected: fmt.Sprintf("%s = %s", assertion.Path, want),
			Actual:   fmt.Sprintf("%s = %s", assertion.Path, got),
		}
	}
	return nil
}

// assertSteps checks the changed flag of every listed step.
func assertSteps(trace []TraceEvent, assertion Assertion) error {
	want := assertion.Type == AssertChanged
	for _, step := range assertion.Steps {
		if step < 0 || step >= len(trace) {
			return &AssertionError{
				Type:     assertion.Type,
				Expected: fmt.Sprintf("step %d in trace", step),
				Actual:   fmt.Sprintf("trace has %d steps", len(trace)),
				Trace:    trace,
			}
		}
		if trace[step].Changed != want {
			return &AssertionError{
				Type:     assertion.Type,
				Expected: fmt.Sprintf("step %d (%s) %s", step, trace[step].Type, describeChange(want)),
				Actual:   describeChange(trace[step].Changed),
				Trace:    trace,
			}
		}
	}
	return nil
}

func describeChange(changed bool) string {
	if changed {
		return "changed the state"
	}
	return "left the state unchanged"
}

// assertMessages checks the remote-view message queue.
func assertMessages(messages []string, assertion Assertion) error {
	if !slices.Equal(messages, assertion.Names) {
		return &AssertionError{
			Type:     AssertMessages,
			Expected: fmt.Sprintf("%v", assertion.Names),
			Actual:   fmt.Sprintf("%v", messages),
		}
	}
	return nil
}

// lookupPath walks a dot path through maps and lists. Numeric segments
// index lists. Map keys may themselves contain dots ("a.css"): the
// shortest run of segments naming an existing key is taken.
func lookupPath(root any, path string) (any, bool) {
	segs := strings.Split(path, ".")
	cur := root
	for i := 0; i < len(segs); i++ {
		switch node := cur.(type) {
		case map[string]any:
			v, n, ok := lookupKey(node, segs[i:])
			if !ok {
				return nil, false
			}
			cur, i = v, i+n-1
		case map[string]string:
			v, n, ok := lookupKey(node, segs[i:])
			if !ok {
				return nil, false
			}
			cur, i = v, i+n-1
		case []any:
			idx, err := strconv.Atoi(segs[i])
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		case []string:
			idx, err := strconv.Atoi(segs[i])
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// lookupKey finds the key formed by the fewest leading segments and
// reports how many segments it consumed.
func lookupKey[V any](m map[string]V, segs []string) (any, int, bool) {
	for n := 1; n <= len(segs); n++ {
		if v, ok := m[strings.Join(segs[:n], ".")]; ok {
			return v, n, true
		}
	}
	return nil, 0, false
}

// normalize converts YAML-decoded values into the shapes canon.Marshal
// accepts. Maps with non-string keys get their keys formatted.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func render(v any) string {
	data, err := canon.Marshal(normalize(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertState:
			err = assertState(result.State, assertion)
		case AssertChanged, AssertUnchanged:
			err = assertSteps(result.Trace, assertion)
		case AssertMessages:
			err = assertMessages(result.Messages, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
