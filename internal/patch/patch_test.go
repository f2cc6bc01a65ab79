package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		wantErr string
	}{
		{"valid update", Patch{Path: []string{"body"}, Action: ActionUpdate, Update: []Property{{Name: "color", Value: "red"}}}, ""},
		{"valid remove", Patch{Path: []string{"body"}, Action: ActionRemove}, ""},
		{"empty path", Patch{Action: ActionUpdate}, "empty path"},
		{"empty segment", Patch{Path: []string{"body", ""}, Action: ActionUpdate}, "path[1]"},
		{"unknown action", Patch{Path: []string{"body"}, Action: "replace"}, "unknown action"},
		{"nameless update", Patch{Path: []string{"body"}, Action: ActionUpdate, Update: []Property{{Value: "x"}}}, "update[0]"},
		{"nameless remove", Patch{Path: []string{"body"}, Action: ActionUpdate, Remove: []Property{{}}}, "remove[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.patch)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAllReportsIndex(t *testing.T) {
	err := ValidateAll([]Patch{
		{Path: []string{"a"}, Action: ActionAdd},
		{Path: []string{"b"}, Action: "bogus"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patches[1]")
}

func TestEqualSeq(t *testing.T) {
	a := []Patch{{Path: []string{"body"}, Action: ActionUpdate, Update: []Property{{Name: "color", Value: "red"}}}}
	b := []Patch{{Path: []string{"body"}, Action: ActionUpdate, Update: []Property{{Name: "color", Value: "red"}}}}
	c := []Patch{{Path: []string{"body"}, Action: ActionUpdate, Update: []Property{{Name: "color", Value: "blue"}}}}

	assert.True(t, EqualSeq(a, b))
	assert.False(t, EqualSeq(a, c))
	assert.False(t, EqualSeq(a, nil))
	assert.True(t, EqualSeq(nil, []Patch{}))
}

func TestCanonical(t *testing.T) {
	p := Patch{
		Path:   []string{"body"},
		Action: ActionUpdate,
		Update: []Property{{Name: "color", Value: "red"}},
		Remove: []Property{{Name: "margin"}},
	}

	assert.Equal(t, map[string]any{
		"path":   []string{"body"},
		"action": "update",
		"update": []any{map[string]any{"name": "color", "value": "red"}},
		"remove": []any{map[string]any{"name": "margin"}},
	}, p.Canonical())

	bare := Patch{Path: []string{"a"}, Action: ActionRemove}.Canonical()
	assert.NotContains(t, bare, "update")
	assert.NotContains(t, bare, "remove")
	assert.Len(t, CanonicalSeq([]Patch{p, p}), 2)
}
