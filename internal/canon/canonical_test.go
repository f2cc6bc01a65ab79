package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"uint64", uint64(7), "7"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"empty object", map[string]any{}, "{}"},
		{"string map", map[string]string{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalNestedSortedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{"b": 1, "a": 2},
		"a": 3,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair 0xD800 0xDC00, which sorts before
	// U+E000 in UTF-16 but after it in UTF-8.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	result, err := Marshal("<a href=\"x\">&</a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a href=\"x\">&</a>"`, string(result))
}

func TestMarshalLineSeparatorsLiteral(t *testing.T) {
	result, err := Marshal("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by the text u2028 must stay escaped.
	result, err = Marshal(`x\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	result, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalRejectsNullAndFloats(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")

	_, err = Marshal(map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats")

	_, err = Marshal(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestDigestDeterminism(t *testing.T) {
	a := map[string]any{"tabs": []any{"1", "2"}, "enabled": true}
	b := map[string]any{"enabled": true, "tabs": []any{"1", "2"}}

	da, err := Digest(DomainState, a)
	require.NoError(t, err)
	db, err := Digest(DomainState, b)
	require.NoError(t, err)

	assert.Equal(t, da, db, "key order must not affect the digest")
	assert.Len(t, da, 64, "SHA-256 hex is 64 characters")

	other, err := Digest(DomainEvent, a)
	require.NoError(t, err)
	assert.NotEqual(t, da, other, "domains must separate digests")
}

func TestEventIDChangesWithInput(t *testing.T) {
	payload := []byte(`{"type":"ui/rv-shift-message"}`)

	id1 := EventID("run-1", 1, payload)
	id2 := EventID("run-2", 1, payload)
	id3 := EventID("run-1", 2, payload)

	assert.Equal(t, id1, EventID("run-1", 1, payload))
	assert.NotEqual(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}
