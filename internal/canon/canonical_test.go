package canon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"json number", json.Number("7"), "7"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"exact", "stemmed"}, `["exact","stemmed"]`},
		{"empty object", map[string]any{}, "{}"},
		{"nested", map[string]any{"AND": []any{map[string]any{"name": "John"}}}, `{"AND":[{"name":"John"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"name":    "smith",
		"_comp":   ">=",
		"AND":     []any{},
		"zebra":   map[string]any{"b": 1, "a": 2},
		"_weight": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"AND":[],"_comp":">=","_weight":3,"name":"smith","zebra":{"a":2,"b":1}}`, string(got))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair D800 DC00, which sorts before
	// U+E000 in UTF-16 even though its UTF-8 bytes sort after.
	got, err := MarshalCanonical(map[string]any{"\uE000": 1, "\U00010000": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(got))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	got, err := MarshalCanonical(`<a href="x">&</a>`)
	require.NoError(t, err)
	assert.Equal(t, `"<a href=\"x\">&</a>"`, string(got))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"null", nil, "null"},
		{"float", 1.5, "floats"},
		{"fractional number", json.Number("1.5"), "non-integer"},
		{"nested null", map[string]any{"a": []any{nil}}, "null"},
		{"unsupported", struct{}{}, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	composed := "caf\u00E9"
	decomposed := "cafe\u0301"

	a, err := MarshalCanonical(map[string]any{composed: composed})
	require.NoError(t, err)
	b, err := MarshalCanonical(map[string]any{decomposed: decomposed})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = MarshalCanonical(map[string]any{composed: 1, decomposed: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collide")
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"line separator", "a\u2028b", "\"a\u2028b\""},
		{"paragraph separator", "a\u2029b", "\"a\u2029b\""},
		{"literal escape text", `see \u2028`, `"see \\u2028"`},
		{"mixed", "literal \\u2028 and actual \u2028", "\"literal \\\\u2028 and actual \u2028\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalIdempotent(t *testing.T) {
	doc := `{"OR":[{"name":"b"},{"name":"a","_options":["exact"]}],"_weight":2}`
	var v map[string]any
	dec := json.NewDecoder(stringsReader(doc))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&v))

	first, err := MarshalCanonical(v)
	require.NoError(t, err)

	var again map[string]any
	dec = json.NewDecoder(stringsReader(string(first)))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&again))
	second, err := MarshalCanonical(again)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
