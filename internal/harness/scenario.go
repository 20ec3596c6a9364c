package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/roach88/luxql/internal/qerr"
)

// Entry points a scenario can exercise.
const (
	KindSearch     = "search"
	KindCount      = "count"
	KindFacet      = "facet"
	KindFacetCount = "facet-count"
	KindRelated    = "related"
)

// Kinds lists the entry points in display order.
var Kinds = []string{KindSearch, KindCount, KindFacet, KindFacetCount, KindRelated}

// Scenario defines one translation test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Scope is the root scope the query is read in.
	Scope string `yaml:"scope"`

	// Kind is the entry point: search, count, facet, facet-count or related.
	Kind string `yaml:"kind"`

	// Query is the query document. Exactly one of Query and Text is set.
	Query map[string]any `yaml:"query,omitempty"`

	// Text is a simple search string.
	Text string `yaml:"text,omitempty"`

	// Facet names the facet for facet and facet-count scenarios.
	Facet string `yaml:"facet,omitempty"`

	// Anchor is the related-list anchor record.
	Anchor string `yaml:"anchor,omitempty"`

	// Sort, Order, Limit and Offset parameterize search scenarios.
	Sort   string `yaml:"sort,omitempty"`
	Order  string `yaml:"order,omitempty"`
	Limit  int    `yaml:"limit,omitempty"`
	Offset int    `yaml:"offset,omitempty"`

	// ExpectError is the error kind the scenario must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Golden compares the rendered text against testdata/golden.
	Golden bool `yaml:"golden,omitempty"`

	// Assertions validate the rendered text.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates rendered query text.
type Assertion struct {
	// Type is contains, not_contains, count or well_formed.
	Type string `yaml:"type"`

	// Text is the fragment looked for (contains, not_contains, count).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of occurrences (count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertCount       = "count"
	AssertWellFormed  = "well_formed"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every scenario file matching pattern, which may use
// ** to match any number of directories. Files are loaded in path order.
func LoadScenarios(pattern string) ([]*Scenario, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad scenario pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files match %q", pattern)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.ToSlash(path), err)
		}
		if prev, dup := seen[sc.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, sc.Name, prev)
		}
		seen[sc.Name] = path
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Scope == "" {
		return fmt.Errorf("scope is required")
	}
	if s.Kind == "" {
		s.Kind = KindSearch
	}
	if !slices.Contains(Kinds, s.Kind) {
		return fmt.Errorf("unknown kind %q (want one of %v)", s.Kind, Kinds)
	}
	if (s.Query == nil) == (s.Text == "") {
		return fmt.Errorf("exactly one of query and text is required")
	}
	if (s.Kind == KindFacet || s.Kind == KindFacetCount) && s.Facet == "" {
		return fmt.Errorf("facet is required for %s", s.Kind)
	}
	if s.ExpectError != "" {
		if _, ok := qerr.ParseKind(s.ExpectError); !ok {
			return fmt.Errorf("unknown error kind %q", s.ExpectError)
		}
		if s.Golden || len(s.Assertions) > 0 {
			return fmt.Errorf("expect_error cannot be combined with golden or assertions")
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertContains, AssertNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertCount:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertWellFormed:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
