package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckGolden(t *testing.T) {
	dir := t.TempDir()
	sc := &Scenario{Name: "q", Golden: true}
	require.NoError(t, os.WriteFile(GoldenPath(dir, "q"), []byte("SELECT\n"), 0o644))

	match := &Result{Pass: true, SPARQL: "SELECT\n"}
	CheckGolden(dir, sc, match)
	assert.True(t, match.Pass)

	differ := &Result{Pass: true, SPARQL: "ASK\n"}
	CheckGolden(dir, sc, differ)
	assert.False(t, differ.Pass)
	assert.Contains(t, differ.Errors[0], "output differs")

	missing := &Result{Pass: true, SPARQL: "SELECT\n"}
	CheckGolden(dir, &Scenario{Name: "other", Golden: true}, missing)
	assert.False(t, missing.Pass)

	notGolden := &Result{Pass: true, SPARQL: "ASK\n"}
	CheckGolden(dir, &Scenario{Name: "q"}, notGolden)
	assert.True(t, notGolden.Pass)
}

func TestUpdateGolden(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "golden")
	sc := &Scenario{Name: "q", Golden: true}

	require.NoError(t, UpdateGolden(dir, sc, &Result{SPARQL: "SELECT\n"}))
	data, err := os.ReadFile(GoldenPath(dir, "q"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT\n", string(data))

	require.NoError(t, UpdateGolden(dir, &Scenario{Name: "skip"}, &Result{SPARQL: "SELECT\n"}))
	_, err = os.Stat(GoldenPath(dir, "skip"))
	assert.True(t, os.IsNotExist(err))
}
