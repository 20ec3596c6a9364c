package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luxql/internal/qerr"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "json",
		Writer:  buf,
		TraceID: "trace-1",
	}

	err := formatter.Success(map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "json",
		Writer:  buf,
		TraceID: "trace-2",
	}

	err := formatter.Error("E203", "bad date", map[string]string{"field": "startDate"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E203", resp.Error.Code)
	assert.Equal(t, "bad date", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
	assert.Equal(t, "trace-2", resp.TraceID)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("Query valid"))
	assert.Equal(t, "Query valid\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error("E202", "unknown scope", []string{"planet"}))
			assert.Contains(t, buf.String(), "Error [E202]: unknown scope")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	t.Run("goes to ErrWriter", func(t *testing.T) {
		out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

		formatter.VerboseLog("Reading %s", "query.json")
		assert.Empty(t, out.String())
		assert.Equal(t, "Reading query.json\n", errOut.String())
	})

	t.Run("disabled", func(t *testing.T) {
		out := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: out}

		formatter.VerboseLog("Reading %s", "query.json")
		assert.Empty(t, out.String())
	})
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	cause := qerr.Value("startDate", "bad date")
	err := formatter.Fail(ExitFailure, cause.Code(), cause)

	assert.Contains(t, buf.String(), "Error [E203]: ValueError: startDate: bad date")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, qerr.ErrValue)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "no db")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("cause")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "inner: cause", WrapExitError(ExitCommandError, "inner", errors.New("cause")).Error())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "E202", errorCode(qerr.Scope("x", "bad")))
	assert.Equal(t, "E204", errorCode(fmt.Errorf("wrapped: %w", qerr.Structure("", "bad"))))
	assert.Equal(t, ErrCodeGeneric, errorCode(errors.New("plain")))
}

func TestUUIDv7Generator(t *testing.T) {
	a := UUIDv7Generator{}.Generate()
	b := UUIDv7Generator{}.Generate()
	assert.Len(t, a, 36)
	assert.Equal(t, byte('7'), a[14], "version nibble")
	assert.NotEqual(t, a, b)
}
