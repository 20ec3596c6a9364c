package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luxql/internal/qerr"
)

func TestToJSONLeafMetadata(t *testing.T) {
	b := newBuilder()
	root := mustRoot(t, b, "agent")
	and, err := b.NewBoolean(And, root)
	require.NoError(t, err)

	_, err = b.NewLeaf("name", LeafSpec{Value: "John", Options: []string{"exact"}, Weight: 5, Complete: true}, and)
	require.NoError(t, err)
	_, err = b.NewLeaf("startDate", LeafSpec{Value: "1850-01-01T00:00:00.000Z", Comparator: ">="}, and)
	require.NoError(t, err)

	data, err := Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{"AND": [
		{"name": "John", "_options": ["exact"], "_weight": 5, "_complete": true},
		{"startDate": "1850-01-01T00:00:00.000Z", "_comp": ">="}
	]}`, string(data))
}

func TestToJSONCanonicalizesScalars(t *testing.T) {
	b := newBuilder()
	root := mustRoot(t, b, "item")
	and, err := b.NewBoolean(And, root)
	require.NoError(t, err)

	_, err = b.NewLeaf("isOnline", LeafSpec{Value: true}, and)
	require.NoError(t, err)
	_, err = b.NewLeaf("height", LeafSpec{Value: 12.0, Comparator: ">"}, and)
	require.NoError(t, err)

	js, err := ToJSON(root)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"AND": []any{
		map[string]any{"isOnline": "1"},
		map[string]any{"height": "12", "_comp": ">"},
	}}, js)
}

func TestToJSONArity(t *testing.T) {
	b := newBuilder()

	tests := []struct {
		name string
		node func(t *testing.T) Node
	}{
		{"empty root", func(t *testing.T) Node { return mustRoot(t, b, "item") }},
		{"empty boolean", func(t *testing.T) Node {
			n, err := b.NewBoolean(Or, mustRoot(t, b, "item"))
			require.NoError(t, err)
			return n
		}},
		{"childless relationship", func(t *testing.T) Node {
			n, err := b.NewRelationship("carries", mustRoot(t, b, "item"))
			require.NoError(t, err)
			return n
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToJSON(tt.node(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, qerr.ErrStructure))
		})
	}
}

func TestValidate(t *testing.T) {
	b := newBuilder()

	root := mustRoot(t, b, "item")
	rel, err := b.NewRelationship("carries", root)
	require.NoError(t, err)
	assert.True(t, errors.Is(Validate(root), qerr.ErrStructure), "relationship has no child yet")

	not, err := b.NewBoolean(Not, rel)
	require.NoError(t, err)
	assert.True(t, errors.Is(Validate(root), qerr.ErrStructure), "boolean has no children yet")

	_, err = b.NewLeaf("name", LeafSpec{Value: "visual"}, not)
	require.NoError(t, err)
	assert.NoError(t, Validate(root))
	assert.Equal(t, "work", not.Scope)
	assert.Same(t, root, Top(root).Parent())
}

func TestAnchorScope(t *testing.T) {
	b := newBuilder()
	root := mustRoot(t, b, "item")
	rel, err := b.NewRelationship("carries", root)
	require.NoError(t, err)
	leaf, err := b.NewLeaf("name", LeafSpec{Value: "visual"}, rel)
	require.NoError(t, err)

	assert.Equal(t, "item", AnchorScope(leaf))
	assert.Equal(t, "work", ProvidedScope(rel))

	loose, err := b.NewLeaf("name", LeafSpec{Value: "x"}, nil)
	require.NoError(t, err)
	assert.Empty(t, AnchorScope(loose))
}
