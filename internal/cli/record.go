package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/luxql/internal/store"
)

// RecordResult is a cached record as printed by the record commands.
type RecordResult struct {
	Identifier string          `json:"identifier"`
	Scope      string          `json:"scope,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Deleted    bool            `json:"deleted,omitempty"`
}

func (r RecordResult) String() string {
	if r.Deleted {
		return fmt.Sprintf("deleted %s", r.Identifier)
	}
	if r.Data == nil {
		return fmt.Sprintf("stored %s", r.Identifier)
	}
	return string(r.Data)
}

// NewRecordCommand creates the record command group.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage the record cache",
		Long: `Read and write JSON-LD records in the sqlite record cache.

The cache is keyed by record identifier. The database is taken from --db
or from database in the config file.`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite cache database")

	var scope string
	put := &cobra.Command{
		Use:           "put <identifier> <record.json | ->",
		Short:         "Store a record",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, dbPath, cmd, func(e *env, st *store.Store) error {
				data, err := readRecordInput(cmd, args[1])
				if err != nil {
					return e.formatter.Fail(ExitCommandError, ErrCodeInput, err)
				}
				rec := store.Record{Identifier: args[0], Scope: scope, Data: data}
				if err := st.PutRecord(cmd.Context(), rec); err != nil {
					return e.formatter.Fail(ExitFailure, ErrCodeStore, err)
				}
				return e.formatter.Success(RecordResult{Identifier: rec.Identifier, Scope: rec.Scope})
			})
		},
	}
	put.Flags().StringVar(&scope, "scope", "", "record scope")

	get := &cobra.Command{
		Use:           "get <identifier>",
		Short:         "Print a cached record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, dbPath, cmd, func(e *env, st *store.Store) error {
				rec, ok, err := st.GetRecord(cmd.Context(), args[0])
				if err != nil {
					return e.formatter.Fail(ExitCommandError, ErrCodeStore, err)
				}
				if !ok {
					return e.formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Errorf("record %s not cached", args[0]))
				}
				return e.formatter.Success(RecordResult{Identifier: rec.Identifier, Scope: rec.Scope, Data: rec.Data})
			})
		},
	}

	del := &cobra.Command{
		Use:           "delete <identifier>",
		Short:         "Remove a cached record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, dbPath, cmd, func(e *env, st *store.Store) error {
				if err := st.DeleteRecord(cmd.Context(), args[0]); err != nil {
					return e.formatter.Fail(ExitCommandError, ErrCodeStore, err)
				}
				return e.formatter.Success(RecordResult{Identifier: args[0], Deleted: true})
			})
		},
	}

	cmd.AddCommand(put, get, del)
	return cmd
}

// withStore opens the cache database named by dbPath (or the config's
// database) and runs fn with it.
func withStore(opts *RootOptions, dbPath string, cmd *cobra.Command, fn func(*env, *store.Store) error) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = e.cfg.Database
	}
	if dbPath == "" {
		return e.formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Errorf("no database: set --db or database in the config file"))
	}
	st, err := store.Open(dbPath, store.WithLogger(e.logger))
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeStore, err)
	}
	defer st.Close()
	return fn(e, st)
}

func readRecordInput(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	return data, nil
}
