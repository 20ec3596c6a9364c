package canon

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

func TestQueryKeyDeterministic(t *testing.T) {
	q := map[string]any{"AND": []any{map[string]any{"name": "John"}, map[string]any{"name": "Jane"}}}

	k1, err := QueryKey("search", "agent", q, map[string]any{"limit": 25})
	require.NoError(t, err)
	k2, err := QueryKey("search", "agent", q, map[string]any{"limit": 25})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64, "SHA-256 hex is 64 characters")
}

func TestQueryKeyChangesWithInput(t *testing.T) {
	q := map[string]any{"name": "John"}
	base, err := QueryKey("search", "agent", q, nil)
	require.NoError(t, err)

	variants := map[string]func() (string, error){
		"kind":   func() (string, error) { return QueryKey("count", "agent", q, nil) },
		"scope":  func() (string, error) { return QueryKey("search", "item", q, nil) },
		"query":  func() (string, error) { return QueryKey("search", "agent", map[string]any{"name": "Jane"}, nil) },
		"params": func() (string, error) { return QueryKey("search", "agent", q, map[string]any{"limit": 10}) },
	}
	for name, fn := range variants {
		t.Run(name, func(t *testing.T) {
			k, err := fn()
			require.NoError(t, err)
			assert.NotEqual(t, base, k)
		})
	}
}

func TestQueryKeyIgnoresKeyOrderAndNormalization(t *testing.T) {
	a, err := QueryKey("search", "agent", map[string]any{"name": "caf\u00E9", "_weight": 2}, nil)
	require.NoError(t, err)
	b, err := QueryKey("search", "agent", map[string]any{"_weight": 2, "name": "cafe\u0301"}, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestQueryKeyRejectsFloats(t *testing.T) {
	_, err := QueryKey("search", "item", map[string]any{"height": 1.5}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QueryKey")
}

func TestHashWithDomainSeparates(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainCompiled, data), hashWithDomain("other/v1", data))
}
