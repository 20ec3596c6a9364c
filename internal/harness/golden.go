package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir holds the golden query texts, relative to the test's package.
const GoldenDir = "testdata/golden"

// RunWithGolden executes a scenario and, when the scenario asks for it,
// compares the rendered text against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can assert on Pass and Errors; a golden
// mismatch fails t through goldie.
func RunWithGolden(t *testing.T, h *Harness, sc *Scenario) (*Result, error) {
	t.Helper()

	result, err := h.Run(sc)
	if err != nil {
		return nil, err
	}
	if !sc.Golden {
		return result, nil
	}
	if result.SPARQL == "" {
		return result, fmt.Errorf("scenario %s: nothing rendered to compare", sc.Name)
	}
	AssertGolden(t, sc.Name, result)
	return result, nil
}

// AssertGolden compares a result's rendered text against the golden file
// named name.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(result.SPARQL))
}

// GoldenPath returns the golden file for the scenario called name under dir.
func GoldenPath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

// CheckGolden compares result against its golden file under dir and
// records a mismatch or a missing file as a result error. Scenarios
// without golden: true and failed translations are left alone.
func CheckGolden(dir string, sc *Scenario, result *Result) {
	if !sc.Golden || result.SPARQL == "" {
		return
	}
	path := GoldenPath(dir, sc.Name)
	want, err := os.ReadFile(path)
	if err != nil {
		result.AddError(fmt.Sprintf("golden: %v", err))
		return
	}
	if !bytes.Equal(want, []byte(result.SPARQL)) {
		result.AddError(fmt.Sprintf("golden: output differs from %s", path))
	}
}

// UpdateGolden writes result's rendered text as the scenario's golden file.
func UpdateGolden(dir string, sc *Scenario, result *Result) error {
	if !sc.Golden || result.SPARQL == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating golden dir: %w", err)
	}
	return os.WriteFile(GoldenPath(dir, sc.Name), []byte(result.SPARQL), 0o644)
}
