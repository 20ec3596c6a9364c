package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luxql/internal/testutil"
)

func TestScenarioFiles(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios/**/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	h := New(testutil.Schema())
	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, h, sc)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestLoadScenariosRecursesDirectories(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios/**/*.yaml")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	assert.Contains(t, names, "agent_nationality_facet", "nested directories are included")
	assert.Contains(t, names, "item_count_by_producer")
}

func TestLoadScenariosNoMatch(t *testing.T) {
	_, err := LoadScenarios("testdata/nothing/**/*.yaml")
	assert.ErrorContains(t, err, "no scenario files match")
}

func TestRunReportsFailedAssertion(t *testing.T) {
	sc := &Scenario{
		Name:        "wrong_expectation",
		Description: "d",
		Scope:       "agent",
		Kind:        KindCount,
		Query:       map[string]any{"name": "smith"},
		Assertions: []Assertion{
			{Type: AssertContains, Text: "lux:itemName"},
			{Type: AssertCount, Text: "?uri a lux:Agent", Count: 1},
		},
	}

	result, err := New(testutil.Schema()).Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertions[0] (contains)")
}

func TestRunExpectedErrorMismatch(t *testing.T) {
	h := New(testutil.Schema())

	succeeded := &Scenario{
		Name: "no_error", Description: "d", Scope: "agent", Kind: KindCount,
		Query:       map[string]any{"name": "smith"},
		ExpectError: "ValueError",
	}
	result, err := h.Run(succeeded)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "translation succeeded")

	wrongKind := &Scenario{
		Name: "wrong_kind", Description: "d", Scope: "agent", Kind: KindCount,
		Query:       map[string]any{"startDate": "nope", "_comp": ">"},
		ExpectError: "scope",
	}
	result, err = h.Run(wrongKind)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "ValueError", result.ErrorKind)
}

func TestRunUnexpectedError(t *testing.T) {
	sc := &Scenario{
		Name: "bad_scope", Description: "d", Scope: "planet", Kind: KindSearch,
		Query: map[string]any{"name": "x"},
	}

	result, err := New(testutil.Schema()).Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "ScopeError", result.ErrorKind)
	assert.Empty(t, result.SPARQL)
}

func TestRunAll(t *testing.T) {
	scenarios := []*Scenario{
		{Name: "a", Description: "d", Scope: "agent", Kind: KindCount, Query: map[string]any{"name": "x"}},
		{Name: "b", Description: "d", Scope: "item", Kind: KindCount, Text: "ring"},
	}
	results, err := New(testutil.Schema()).RunAll(scenarios)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Name)
	assert.True(t, results[1].Pass)
}
