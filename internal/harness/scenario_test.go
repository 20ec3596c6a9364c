package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: demo
description: "demo"
scope: item
kind: facet
facet: material
query:
  AND:
    - name: ring
    - height: 3
      _comp: ">="
assertions:
  - type: well_formed
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", sc.Name)
	assert.Equal(t, KindFacet, sc.Kind)
	assert.Equal(t, "material", sc.Facet)
	and, ok := sc.Query["AND"].([]any)
	require.True(t, ok)
	assert.Len(t, and, 2)
}

func TestParseScenarioDefaultsToSearch(t *testing.T) {
	sc, err := ParseScenario([]byte("name: s\ndescription: d\nscope: item\ntext: ring\n"))
	require.NoError(t, err)
	assert.Equal(t, KindSearch, sc.Kind)
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: s\ndescription: d\nscope: item\ntext: x\nassertion: []\n", "failed to parse YAML"},
		{"missing name", "description: d\nscope: item\ntext: x\n", "name is required"},
		{"missing description", "name: s\nscope: item\ntext: x\n", "description is required"},
		{"missing scope", "name: s\ndescription: d\ntext: x\n", "scope is required"},
		{"unknown kind", "name: s\ndescription: d\nscope: item\nkind: explain\ntext: x\n", "unknown kind"},
		{"no query", "name: s\ndescription: d\nscope: item\n", "exactly one of query and text"},
		{"query and text", "name: s\ndescription: d\nscope: item\ntext: x\nquery: {name: y}\n", "exactly one of query and text"},
		{"facet missing", "name: s\ndescription: d\nscope: item\nkind: facet\ntext: x\n", "facet is required"},
		{"unknown error kind", "name: s\ndescription: d\nscope: item\ntext: x\nexpect_error: Oops\n", "unknown error kind"},
		{"error with golden", "name: s\ndescription: d\nscope: item\ntext: x\nexpect_error: value\ngolden: true\n", "cannot be combined"},
		{"assertion type", "name: s\ndescription: d\nscope: item\ntext: x\nassertions: [{type: matches}]\n", "unknown assertion type"},
		{"assertion text", "name: s\ndescription: d\nscope: item\ntext: x\nassertions: [{type: contains}]\n", "text is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenariosDuplicateName(t *testing.T) {
	dir := t.TempDir()
	doc := []byte("name: same\ndescription: d\nscope: item\ntext: x\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), doc, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.yaml"), doc, 0o644))

	_, err := LoadScenarios(filepath.Join(dir, "**", "*.yaml"))
	assert.ErrorContains(t, err, "already used")
}
