package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/luxql/internal/canon"
	"github.com/roach88/luxql/internal/harness"
	"github.com/roach88/luxql/internal/query"
	"github.com/roach88/luxql/internal/reader"
	"github.com/roach88/luxql/internal/sparql"
	"github.com/roach88/luxql/internal/sparqltext"
	"github.com/roach88/luxql/internal/store"
	"github.com/roach88/luxql/internal/translate"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Scope  string
	Kind   string
	Text   string
	Facet  string
	Anchor string
	Sort   string
	Order  string
	Limit  int
	Offset int
	DB     string
}

// TranslateResult is the payload of a successful translation.
type TranslateResult struct {
	Kind     string   `json:"kind"`
	Scope    string   `json:"scope"`
	Key      string   `json:"key,omitempty"`
	Cached   bool     `json:"cached"`
	SPARQL   string   `json:"sparql"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r TranslateResult) String() string {
	return r.SPARQL
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate [query.json | -]",
		Short: "Translate a query to SPARQL",
		Long: `Translate a LUX JSON query, or a simple text search, into SPARQL.

The query is read from the named file, or from stdin when the argument is
"-". With --text no argument is taken and the text is searched anywhere.

With --db (or database in the config file) translations are cached in a
sqlite database keyed by a canonical hash of the entry point, scope, query
and parameters.

Examples:
  luxql translate query.json --scope item
  luxql translate - --scope agent --kind count < query.json
  luxql translate --text "rembrandt" --scope item --format json
  luxql translate query.json --scope item --kind facet --facet itemRecordType`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "record scope (agent, item, ...)")
	cmd.Flags().StringVar(&opts.Kind, "kind", harness.KindSearch, "entry point (search|count|facet|facet-count|related)")
	cmd.Flags().StringVar(&opts.Text, "text", "", "simple text search instead of a query document")
	cmd.Flags().StringVar(&opts.Facet, "facet", "", "facet name for facet and facet-count")
	cmd.Flags().StringVar(&opts.Anchor, "anchor", "", "anchor record IRI for related")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort predicate (default relevance)")
	cmd.Flags().StringVar(&opts.Order, "order", "", "sort order (ASC|DESC)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page length (default from config)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "page offset")
	cmd.Flags().StringVar(&opts.DB, "db", "", "sqlite cache database")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func runTranslate(opts *TranslateOptions, args []string, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	f := e.formatter

	if !slices.Contains(harness.Kinds, opts.Kind) {
		return f.Fail(ExitCommandError, ErrCodeInput, fmt.Errorf("unknown kind %q (want one of %v)", opts.Kind, harness.Kinds))
	}

	doc, err := readQueryInput(cmd, args, opts.Text)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}

	rd := reader.New(e.schema, reader.WithLogger(e.logger))
	tree, err := rd.ReadJSON(doc, opts.Scope)
	if err != nil {
		return f.Fail(ExitFailure, errorCode(err), err)
	}

	sc := &harness.Scenario{
		Name:   "translate",
		Scope:  opts.Scope,
		Kind:   opts.Kind,
		Facet:  opts.Facet,
		Anchor: opts.Anchor,
		Sort:   opts.Sort,
		Order:  opts.Order,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}
	tr := translate.New(e.schema, translate.WithConfig(e.cfg.Translate), translate.WithLogger(e.logger))

	dbPath := opts.DB
	if dbPath == "" {
		dbPath = e.cfg.Database
	}
	if dbPath == "" {
		result, err := translateTree(tr, tree, sc)
		if err != nil {
			return f.Fail(ExitFailure, errorCode(err), err)
		}
		return f.Success(result)
	}

	st, err := store.Open(dbPath, store.WithLogger(e.logger))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err)
	}
	defer st.Close()

	result, err := translateCached(cmd.Context(), st, tr, tree, sc, f.TraceID)
	if err != nil {
		code := errorCode(err)
		if code == ErrCodeGeneric {
			return f.Fail(ExitCommandError, ErrCodeStore, err)
		}
		return f.Fail(ExitFailure, code, err)
	}
	return f.Success(result)
}

// readQueryInput returns the query document bytes: the text search when
// text is set, otherwise the file named by args[0] ("-" for stdin).
func readQueryInput(cmd *cobra.Command, args []string, text string) ([]byte, error) {
	if text != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--text cannot be combined with a query file")
		}
		return encodeJSON(reader.FromText(text))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a query file (or -) or --text is required")
	}
	if args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading query: %w", err)
	}
	return data, nil
}

func translateTree(tr *translate.Translator, tree query.Node, sc *harness.Scenario) (TranslateResult, error) {
	sel, err := harness.Dispatch(tr, tree, sc)
	if err != nil {
		return TranslateResult{}, err
	}
	text, err := sparqltext.Render(sel)
	if err != nil {
		return TranslateResult{}, err
	}
	return TranslateResult{
		Kind:     sc.Kind,
		Scope:    sc.Scope,
		SPARQL:   text,
		Warnings: sparql.Check(sel),
	}, nil
}

// translateCached serves the translation from st when the same request was
// translated before, and stores it otherwise.
func translateCached(ctx context.Context, st *store.Store, tr *translate.Translator, tree query.Node, sc *harness.Scenario, traceID string) (TranslateResult, error) {
	doc, err := query.ToJSON(tree)
	if err != nil {
		return TranslateResult{}, err
	}
	key, err := canon.QueryKey(sc.Kind, sc.Scope, doc, cacheParams(tr.Config(), sc))
	if err != nil {
		return TranslateResult{}, err
	}

	hit, ok, err := st.GetCompiled(ctx, key)
	if err != nil {
		return TranslateResult{}, err
	}
	if ok {
		return TranslateResult{Kind: hit.Kind, Scope: hit.Scope, Key: key, Cached: true, SPARQL: hit.SPARQL}, nil
	}

	result, err := translateTree(tr, tree, sc)
	if err != nil {
		return TranslateResult{}, err
	}
	queryJSON, err := canon.MarshalCanonical(doc)
	if err != nil {
		return TranslateResult{}, err
	}
	err = st.PutCompiled(ctx, store.Compiled{
		Key:       key,
		Kind:      sc.Kind,
		Scope:     sc.Scope,
		QueryJSON: string(queryJSON),
		SPARQL:    result.SPARQL,
		TraceID:   traceID,
	})
	if err != nil {
		return TranslateResult{}, err
	}
	result.Key = key
	return result, nil
}

// cacheParams lists every input besides the query that changes the
// translated text.
func cacheParams(cfg translate.Config, sc *harness.Scenario) map[string]any {
	return map[string]any{
		"limit":  sc.Limit,
		"offset": sc.Offset,
		"sort":   sc.Sort,
		"order":  sc.Order,
		"facet":  sc.Facet,
		"anchor": sc.Anchor,
		"weights": []any{
			cfg.NameWeight,
			cfg.RecordNameWeight,
			cfg.RecordTextWeight,
			cfg.ReferenceNameWeight,
		},
		"page_length":   cfg.PageLength,
		"related_limit": cfg.RelatedLimit,
		"sort_default":  cfg.SortDefault,
	}
}
