package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/luxql/internal/store"
)

// CachedQuery summarizes one compiled-query cache entry.
type CachedQuery struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Scope   string `json:"scope"`
	Query   string `json:"query"`
	TraceID string `json:"trace_id,omitempty"`
	Hits    int64  `json:"hits"`
}

// CacheListResult is the payload of cache list.
type CacheListResult struct {
	Entries []CachedQuery `json:"entries"`
}

func (r CacheListResult) String() string {
	if len(r.Entries) == 0 {
		return "No cached queries."
	}
	var b strings.Builder
	for i, c := range r.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %-11s %-8s hits=%d  %s", c.Key[:12], c.Kind, c.Scope, c.Hits, c.Query)
	}
	return b.String()
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath, kind, scope string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the compiled-query cache",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite cache database")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List cached translations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, dbPath, cmd, func(e *env, st *store.Store) error {
				entries, err := st.ListCompiled(cmd.Context(), kind, scope)
				if err != nil {
					return e.formatter.Fail(ExitCommandError, ErrCodeStore, err)
				}
				result := CacheListResult{Entries: make([]CachedQuery, 0, len(entries))}
				for _, c := range entries {
					result.Entries = append(result.Entries, CachedQuery{
						Key:     c.Key,
						Kind:    c.Kind,
						Scope:   c.Scope,
						Query:   c.QueryJSON,
						TraceID: c.TraceID,
						Hits:    c.Hits,
					})
				}
				return e.formatter.Success(result)
			})
		},
	}
	list.Flags().StringVar(&kind, "kind", "", "only entries for this entry point")
	list.Flags().StringVar(&scope, "scope", "", "only entries for this scope")

	cmd.AddCommand(list)
	return cmd
}
