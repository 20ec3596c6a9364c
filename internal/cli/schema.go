package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/luxql/internal/qerr"
)

// FieldDescription is one field of a scope as printed by the schema command.
type FieldDescription struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Options  string `json:"options,omitempty"`
	Label    string `json:"label,omitempty"`
}

// SchemaResult lists scopes, or the fields of one scope.
type SchemaResult struct {
	Scopes      []string           `json:"scopes,omitempty"`
	Scope       string             `json:"scope,omitempty"`
	Fields      []FieldDescription `json:"fields,omitempty"`
	Comparators []string           `json:"comparators,omitempty"`
}

func (r SchemaResult) String() string {
	var b strings.Builder
	if r.Scope == "" {
		for _, s := range r.Scopes {
			fmt.Fprintln(&b, s)
		}
		fmt.Fprintf(&b, "comparators: %s", strings.Join(r.Comparators, " "))
		return b.String()
	}
	fmt.Fprintf(&b, "%s (%d fields)", r.Scope, len(r.Fields))
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "\n  %-28s %s", f.Name, f.Relation)
		if f.Options != "" {
			fmt.Fprintf(&b, " [%s]", f.Options)
		}
	}
	return b.String()
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [scope]",
		Short: "Show the scope/field schema",
		Long: `Load the schema and print its scopes, or the fields of one scope.

Loading checks the schema, so this also validates a schema file:
  luxql schema --schema ./lux.cue`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runSchema(opts *RootOptions, args []string, cmd *cobra.Command) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}
	s := e.schema

	if len(args) == 0 {
		return e.formatter.Success(SchemaResult{
			Scopes:      s.Scopes(),
			Comparators: s.Comparators(),
		})
	}

	scope := args[0]
	if !s.IsScope(scope) {
		err := qerr.Scope(scope, "unknown scope (want one of %v)", s.Scopes())
		return e.formatter.Fail(ExitFailure, err.Code(), err)
	}
	result := SchemaResult{Scope: scope}
	for _, name := range s.Fields(scope) {
		info, _ := s.FieldInfo(scope, name)
		result.Fields = append(result.Fields, FieldDescription{
			Name:     name,
			Relation: info.Relation,
			Options:  info.AllowedOptionsName,
			Label:    info.Label,
		})
	}
	return e.formatter.Success(result)
}
