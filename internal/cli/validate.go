package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/luxql/internal/canon"
	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/query"
	"github.com/roach88/luxql/internal/reader"
)

// ValidationError is one problem found in a query document.
type ValidationError struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Scope string `json:"scope,omitempty"`
	// Canonical is the normalized query document: comparators defaulted,
	// values in canonical string form, keys sorted.
	Canonical string            `json:"canonical,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("✓ Query valid (scope %s)\n%s", r.Scope, r.Canonical)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✗ Query invalid (%d error(s))", len(r.Errors))
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  [%s] ", e.Code)
		if e.Field != "" {
			fmt.Fprintf(&b, "%s: ", e.Field)
		}
		b.WriteString(e.Message)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "validate <query.json | ->",
		Short: "Validate a query without translating it",
		Long: `Validate a LUX JSON query against the schema.

Reads the query, resolves the scope of every clause and checks every leaf
value, then prints the canonical form of the query. Faster than translate
for checking hand-written queries.

Exit codes:
  0 - Query valid
  1 - Query invalid
  2 - Command error (unreadable file, bad schema)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, scope, args, cmd)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "record scope (agent, item, ...)")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func runValidate(opts *RootOptions, scope string, args []string, cmd *cobra.Command) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}
	f := e.formatter

	data, err := readQueryInput(cmd, args, "")
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}

	rd := reader.New(e.schema, reader.WithLogger(e.logger))
	tree, err := rd.ReadJSON(data, scope)
	if err == nil {
		err = query.Validate(tree)
	}
	if err != nil {
		result := ValidationResult{Errors: []ValidationError{validationError(err)}}
		if outErr := f.Success(result); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "query invalid", err)
	}

	doc, err := query.ToJSON(tree)
	if err != nil {
		return f.Fail(ExitFailure, errorCode(err), err)
	}
	canonical, err := canon.MarshalCanonical(doc)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, err)
	}
	f.VerboseLog("validated query for scope %s", tree.Scope)

	return f.Success(ValidationResult{
		Valid:     true,
		Scope:     tree.Scope,
		Canonical: string(canonical),
	})
}

func validationError(err error) ValidationError {
	ve := ValidationError{Code: errorCode(err), Message: err.Error()}
	var qe *qerr.Error
	if errors.As(err, &qe) {
		ve.Kind = qe.Kind.String()
		ve.Field = qe.Field
		ve.Message = qe.Message
	}
	return ve
}

// encodeJSON marshals v without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
