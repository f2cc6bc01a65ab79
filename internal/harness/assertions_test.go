package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() map[string]any {
	return map[string]any{
		"model": map[string]any{"enabled": true},
		"sessions": map[string]any{
			"1": map[string]any{
				"stylesheets": []string{"a.css", "b.css"},
				"mapping":     map[string]string{"a.css": "/src/a.css"},
				"patches": map[string]any{
					"a.css": []any{map[string]any{"action": "remove", "path": []string{"body"}}},
				},
			},
		},
		"ui": map[string]any{"messages": []any{"connecting"}},
	}
}

func TestLookupPath(t *testing.T) {
	state := sampleState()

	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{"model.enabled", true, true},
		{"sessions.1.stylesheets.1", "b.css", true},
		{"sessions.1.mapping.a.css", "/src/a.css", true},
		{"sessions.1.patches.a.css.0.action", "remove", true},
		{"ui.messages.0", "connecting", true},
		{"ui.messages.1", nil, false},
		{"ui.messages.x", nil, false},
		{"sessions.2", nil, false},
		{"model.enabled.deeper", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, found := lookupPath(state, tt.path)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssertState_Equals(t *testing.T) {
	state := sampleState()

	assert.NoError(t, assertState(state, Assertion{Type: AssertState, Path: "model.enabled", Equals: true}))
	assert.NoError(t, assertState(state, Assertion{
		Type:   AssertState,
		Path:   "sessions.1.stylesheets",
		Equals: []any{"a.css", "b.css"},
	}))
	assert.NoError(t, assertState(state, Assertion{
		Type:   AssertState,
		Path:   "sessions.1.mapping",
		Equals: map[string]any{"a.css": "/src/a.css"},
	}))
}

func TestAssertState_Mismatch(t *testing.T) {
	err := assertState(sampleState(), Assertion{
		Type:   AssertState,
		Path:   "sessions.1.stylesheets",
		Equals: []any{"b.css", "a.css"},
	})
	require.Error(t, err)

	var assertErr *AssertionError
	require.True(t, errors.As(err, &assertErr))
	assert.Equal(t, AssertState, assertErr.Type)
	assert.Equal(t, `sessions.1.stylesheets = ["b.css","a.css"]`, assertErr.Expected)
	assert.Equal(t, `sessions.1.stylesheets = ["a.css","b.css"]`, assertErr.Actual)
}

func TestAssertState_PathNotFound(t *testing.T) {
	err := assertState(sampleState(), Assertion{Type: AssertState, Path: "sessions.3", Equals: map[string]any{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")
}

func TestAssertState_Absent(t *testing.T) {
	state := sampleState()

	assert.NoError(t, assertState(state, Assertion{Type: AssertState, Path: "sessions.3", Absent: true}))

	err := assertState(state, Assertion{Type: AssertState, Path: "model.enabled", Absent: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.enabled = true")
}

func TestAssertState_NonStringMapKeys(t *testing.T) {
	state := map[string]any{"m": map[string]string{"1": "x"}}
	err := assertState(state, Assertion{Type: AssertState, Path: "m", Equals: map[any]any{1: "x"}})
	assert.NoError(t, err)
}

func TestAssertSteps(t *testing.T) {
	trace := []TraceEvent{
		{Index: 0, Seq: 1, Type: "session/update-list", Changed: true},
		{Index: 1, Seq: 2, Type: "ui/rv-shift-message", Changed: false},
	}

	assert.NoError(t, assertSteps(trace, Assertion{Type: AssertChanged, Steps: []int{0}}))
	assert.NoError(t, assertSteps(trace, Assertion{Type: AssertUnchanged, Steps: []int{1}}))

	err := assertSteps(trace, Assertion{Type: AssertUnchanged, Steps: []int{0}})
	require.Error(t, err)
	var assertErr *AssertionError
	require.True(t, errors.As(err, &assertErr))
	assert.Equal(t, "step 0 (session/update-list) left the state unchanged", assertErr.Expected)
	assert.Equal(t, "changed the state", assertErr.Actual)
	assert.Contains(t, err.Error(), "[0] * session/update-list")

	err = assertSteps(trace, Assertion{Type: AssertChanged, Steps: []int{5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace has 2 steps")
}

func TestAssertMessages(t *testing.T) {
	assert.NoError(t, assertMessages([]string{"connecting", "connected"}, Assertion{Names: []string{"connecting", "connected"}}))
	assert.NoError(t, assertMessages([]string{}, Assertion{Names: []string{}}))

	err := assertMessages([]string{"connected"}, Assertion{Type: AssertMessages, Names: []string{"connecting"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: [connecting]")
	assert.Contains(t, err.Error(), "Actual: [connected]")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.State = sampleState()
	result.Messages = []string{"connecting"}
	result.Trace = []TraceEvent{{Index: 0, Seq: 1, Type: "ui/rv-push-message", Changed: true}}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertState, Path: "model.enabled", Equals: true},
		{Type: AssertChanged, Steps: []int{0}},
		{Type: AssertMessages, Names: []string{"connecting"}},
		{Type: AssertMessages, Names: []string{}},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "Assertion failed: messages")
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}
