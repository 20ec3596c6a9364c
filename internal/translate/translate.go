// Package translate compiles validated query trees into the sparql select
// IR.
//
// A Translator holds only immutable configuration. Every entry point
// (Search, Count, Facet, FacetCount, Related) allocates a fresh codegen
// state and threads it through the recursive walk, so one Translator can
// serve concurrent requests. Variable names are numbered from that state
// and never collide within one query.
package translate

import (
	"log/slog"
	"strings"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/query"
	"github.com/roach88/luxql/internal/schema"
	"github.com/roach88/luxql/internal/sparql"
)

// AnyScope searches across every scope; no type triple is emitted.
const AnyScope = "any"

// AnchorPlaceholder stands in for the anchor record of a related-list query
// when none is given. Callers substitute it in the rendered text.
const AnchorPlaceholder = "URI-HERE"

// Config holds the scoring weights and defaults used by a Translator.
type Config struct {
	// NameWeight multiplies word scores of name searches.
	NameWeight int `yaml:"name_weight"`
	// RecordNameWeight multiplies word scores against a record's primary
	// name in free-text searches.
	RecordNameWeight int `yaml:"record_name_weight"`
	// RecordTextWeight multiplies word scores against a record's full text.
	RecordTextWeight int `yaml:"record_text_weight"`
	// ReferenceNameWeight multiplies word scores against the names of
	// records this record refers to.
	ReferenceNameWeight int `yaml:"reference_name_weight"`
	// PageLength is the search and facet LIMIT when none is given.
	PageLength int `yaml:"page_length"`
	// RelatedLimit is the LIMIT of related-list queries.
	RelatedLimit int `yaml:"related_limit"`
	// SortDefault sorts records lacking the sort predicate last.
	SortDefault string `yaml:"sort_default"`
}

// DefaultConfig returns the standard weights and defaults.
func DefaultConfig() Config {
	return Config{
		NameWeight:          2,
		RecordNameWeight:    10,
		RecordTextWeight:    3,
		ReferenceNameWeight: 1,
		PageLength:          25,
		RelatedLimit:        100,
		SortDefault:         "ZZZZZZZZZZ",
	}
}

// Translator compiles query trees against one schema.
type Translator struct {
	schema *schema.Schema
	cfg    Config
	logger *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(t *Translator) {
		t.cfg = cfg
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// New returns a Translator for s.
func New(s *schema.Schema, opts ...Option) *Translator {
	t := &Translator{
		schema: s,
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the translator's configuration.
func (t *Translator) Config() Config {
	return t.cfg
}

// SearchOptions parameterizes Search.
type SearchOptions struct {
	// Scope restricts matches to one record type; "" or "any" does not.
	Scope  string
	Limit  int
	Offset int
	// Sort is "" or "relevance" for score order, otherwise the predicate
	// to sort on ("lux:itemSortName", "<iri>" or a bare lux: local name).
	Sort string
	// Order is "ASC" or "DESC"; it applies to predicate sorts only.
	Order string
}

// FacetOptions parameterizes Facet.
type FacetOptions struct {
	Scope  string
	Limit  int
	Offset int
}

// RelatedOptions parameterizes Related.
type RelatedOptions struct {
	Scope string
	// Anchor is the record whose related records are wanted. It is
	// excluded from the results. Empty means AnchorPlaceholder.
	Anchor string
}

var (
	varURI   = sparql.Var("uri")
	varScore = sparql.Var("score")
	varFacet = sparql.Var("facet")
)

// Search compiles a full search: matching records with their relevance
// score, or sorted on a predicate.
func (t *Translator) Search(tree query.Node, opts SearchOptions) (*sparql.Select, error) {
	limit, offset, err := t.page(opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	relevance := opts.Sort == "" || opts.Sort == "relevance"

	cg := &codegen{scoring: relevance}
	where, err := t.where(cg, tree, opts.Scope)
	if err != nil {
		return nil, err
	}

	sel := &sparql.Select{
		Prefixes: sparql.DefaultPrefixes(),
		Where:    where,
		GroupBy:  []sparql.Var{varURI},
		Limit:    limit,
		Offset:   offset,
	}

	if relevance {
		sel.Projections = []sparql.Projection{
			{Expr: varURI},
			{Expr: sparql.Aggregate{Func: "SUM", Arg: varScore}, As: "sscore"},
		}
		where.Add(sparql.Bind{Expr: cg.scoreSum(), Var: varScore})
		sel.OrderBy = []sparql.OrderKey{{Expr: sparql.Var("sscore"), Desc: true}}
	} else {
		pred, err := ParsePredicate(opts.Sort)
		if err != nil {
			return nil, err
		}
		sortValue := sparql.Var("sortValue")
		opt := sparql.NewGroup(sparql.Optional, sparql.T(varURI, pred, sortValue))
		if strings.Contains(opts.Sort, "SortName") {
			opt.Add(sparql.Filter{Expr: sparql.Not{Expr: sparql.Call{Func: "isNumeric", Args: []sparql.Expr{sortValue}}}})
		}
		where.Add(opt, sparql.Bind{
			Expr: sparql.Call{Func: "COALESCE", Args: []sparql.Expr{sortValue, sparql.Str(t.cfg.SortDefault)}},
			Var:  "sortWithDefault",
		})
		sel.Projections = []sparql.Projection{
			{Expr: varURI},
			{Expr: sparql.Aggregate{Func: "MIN", Arg: sparql.Var("sortWithDefault")}, As: "sort"},
		}
		sel.OrderBy = []sparql.OrderKey{{Expr: sparql.Var("sort"), Desc: strings.EqualFold(opts.Order, "DESC")}}
	}

	t.logDone("search", opts.Scope, cg)
	return sel, nil
}

// Count compiles the number of distinct matching records.
func (t *Translator) Count(tree query.Node, scope string) (*sparql.Select, error) {
	cg := &codegen{}
	where, err := t.where(cg, tree, scope)
	if err != nil {
		return nil, err
	}
	t.logDone("count", scope, cg)
	return &sparql.Select{
		Prefixes: sparql.DefaultPrefixes(),
		Projections: []sparql.Projection{
			{Expr: sparql.Aggregate{Func: "COUNT", Distinct: true, Arg: varURI}, As: "count"},
		},
		Where: where,
	}, nil
}

// Facet compiles the breakdown of matching records by the values of
// facet, most frequent first.
func (t *Translator) Facet(tree query.Node, facet sparql.Term, opts FacetOptions) (*sparql.Select, error) {
	if facet == nil {
		return nil, qerr.Value("facet", "missing facet predicate")
	}
	limit, offset, err := t.page(opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	cg := &codegen{}
	inner, err := t.matching(cg, tree, opts.Scope)
	if err != nil {
		return nil, err
	}
	t.logDone("facet", opts.Scope, cg)
	return &sparql.Select{
		Prefixes: sparql.DefaultPrefixes(),
		Projections: []sparql.Projection{
			{Expr: varFacet},
			{Expr: sparql.Aggregate{Func: "COUNT", Arg: varFacet}, As: "facetCount"},
		},
		Where: sparql.NewGroup(sparql.Plain,
			sparql.SubSelect{Select: inner},
			sparql.T(varURI, facet, varFacet),
		),
		GroupBy: []sparql.Var{varFacet},
		OrderBy: []sparql.OrderKey{{Expr: sparql.Var("facetCount"), Desc: true}},
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// FacetCount compiles the number of distinct values of facet across the
// matching records.
func (t *Translator) FacetCount(tree query.Node, facet sparql.Term, scope string) (*sparql.Select, error) {
	if facet == nil {
		return nil, qerr.Value("facet", "missing facet predicate")
	}
	cg := &codegen{}
	matching, err := t.matching(cg, tree, scope)
	if err != nil {
		return nil, err
	}
	grouped := &sparql.Select{
		Projections: []sparql.Projection{{Expr: varFacet}},
		Where: sparql.NewGroup(sparql.Plain,
			sparql.SubSelect{Select: matching},
			sparql.T(varURI, facet, varFacet),
		),
		GroupBy: []sparql.Var{varFacet},
	}
	t.logDone("facet-count", scope, cg)
	return &sparql.Select{
		Prefixes: sparql.DefaultPrefixes(),
		Projections: []sparql.Projection{
			{Expr: sparql.Aggregate{Func: "COUNT", Arg: varFacet}, As: "count"},
		},
		Where: sparql.NewGroup(sparql.Plain, sparql.SubSelect{Select: grouped}),
	}, nil
}

// Related compiles a related-list query: records matching the tree ranked
// by how many ways they match, excluding the anchor record itself.
func (t *Translator) Related(tree query.Node, opts RelatedOptions) (*sparql.Select, error) {
	cg := &codegen{}
	where, err := t.where(cg, tree, opts.Scope)
	if err != nil {
		return nil, err
	}
	anchor := opts.Anchor
	if anchor == "" {
		anchor = AnchorPlaceholder
	}
	where.Add(sparql.Filter{Expr: sparql.Binary{Op: "!=", Left: varURI, Right: sparql.IRI(anchor)}})

	t.logDone("related", opts.Scope, cg)
	return &sparql.Select{
		Prefixes: sparql.DefaultPrefixes(),
		Projections: []sparql.Projection{
			{Expr: varURI},
			{Expr: sparql.Aggregate{Func: "COUNT", Arg: varURI}, As: "count"},
		},
		Where:   where,
		GroupBy: []sparql.Var{varURI},
		OrderBy: []sparql.OrderKey{{Expr: sparql.Var("count"), Desc: true}},
		Limit:   t.cfg.RelatedLimit,
	}, nil
}

// matching wraps the tree's pattern as SELECT DISTINCT ?uri.
func (t *Translator) matching(cg *codegen, tree query.Node, scope string) (*sparql.Select, error) {
	where, err := t.where(cg, tree, scope)
	if err != nil {
		return nil, err
	}
	return &sparql.Select{
		Distinct:    true,
		Projections: []sparql.Projection{{Expr: varURI}},
		Where:       where,
	}, nil
}

// where builds the WHERE group shared by every entry point: the optional
// type triple, then the tree's pattern with ?uri as subject.
func (t *Translator) where(cg *codegen, tree query.Node, scope string) (*sparql.Group, error) {
	if tree == nil {
		return nil, qerr.Structure("", "no query has been defined")
	}
	if err := query.Validate(tree); err != nil {
		return nil, err
	}

	where := sparql.NewGroup(sparql.Plain)
	switch {
	case scope == "" || scope == AnyScope:
	case t.schema.IsScope(scope):
		where.Add(sparql.T(varURI, sparql.RDFType, sparql.Lux(title(scope))))
	default:
		return nil, qerr.Scope(scope, "unknown scope")
	}

	top := query.Top(tree)
	if err := t.node(cg, top, varURI, patternScope(tree), where); err != nil {
		return nil, err
	}
	return where, nil
}

// patternScope is the scope the top-level node is evaluated in.
func patternScope(tree query.Node) string {
	switch n := tree.(type) {
	case *query.Root:
		return n.Scope
	case *query.Boolean:
		return n.Scope
	case *query.Relationship:
		return n.Scope
	case *query.Leaf:
		return n.Scope
	}
	return ""
}

func (t *Translator) page(limit, offset int) (int, int, error) {
	if limit < 0 {
		return 0, 0, qerr.Value("limit", "must not be negative, got %d", limit)
	}
	if offset < 0 {
		return 0, 0, qerr.Value("offset", "must not be negative, got %d", offset)
	}
	if limit == 0 {
		limit = t.cfg.PageLength
	}
	return limit, offset, nil
}

func (t *Translator) logDone(kind, scope string, cg *codegen) {
	t.logger.Debug("query translated",
		"kind", kind,
		"scope", scope,
		"variables", cg.counter,
		"scored", len(cg.scored),
	)
}
