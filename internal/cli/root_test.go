package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luxql/internal/testutil"
)

const testTraceID = "test-trace-0001"

// execute runs the root command with args and returns what it wrote to
// stdout. The trace id is fixed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{TraceIDs: testutil.NewFixedTraceGenerator(testTraceID)})
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decode parses a JSON response envelope.
func decode(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "luxql", cmd.Use)
	assert.Contains(t, cmd.Long, "SPARQL")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"translate", "validate", "schema", "test", "record", "cache"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"schema", "config"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestTranslateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	translateCmd, _, err := cmd.Find([]string{"translate"})
	require.NoError(t, err)

	kindFlag := translateCmd.Flags().Lookup("kind")
	require.NotNil(t, kindFlag)
	assert.Equal(t, "search", kindFlag.DefValue)

	for _, name := range []string{"scope", "text", "facet", "anchor", "sort", "order", "limit", "offset", "db"} {
		assert.NotNil(t, translateCmd.Flags().Lookup(name), name)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	goldenFlag := testCmd.Flags().Lookup("golden-dir")
	require.NotNil(t, goldenFlag)
	assert.Equal(t, "testdata/golden", goldenFlag.DefValue)

	require.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		out, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "schema")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E008]")
	})

	t.Run("invalid weights", func(t *testing.T) {
		path := writeFile(t, "luxql.yaml", "translate:\n  name_weight: -1\n  page_length: 25\n  related_limit: 100\n  sort_default: Z\n")
		out, err := execute(t, "--config", path, "--format", "json", "schema")
		require.Error(t, err)
		resp := decode(t, out)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, ErrCodeConfig, resp.Error.Code)
		assert.Equal(t, testTraceID, resp.TraceID)
	})
}

func TestSchemaFlagLoadsFile(t *testing.T) {
	path := writeFile(t, "tiny.yaml", `terms:
  book:
    title: {relation: text}
    author: {relation: person}
  person:
    name: {relation: text}
`)
	out, err := execute(t, "--schema", path, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "book\nperson\n")

	_, err = execute(t, "--schema", writeFile(t, "bad.yaml", "terms: {}\n"), "schema")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigSchemaPath(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "tiny.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"terms":{"thing":{"label":{"relation":"text"}}}}`), 0o644))
	cfgPath := filepath.Join(dir, "luxql.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("schema: "+schemaPath+"\n"), 0o644))

	out, err := execute(t, "--config", cfgPath, "--format", "json", "schema")
	require.NoError(t, err)
	resp := decode(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, []any{"thing"}, data["scopes"])
}
