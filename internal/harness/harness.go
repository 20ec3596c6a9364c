package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/query"
	"github.com/roach88/luxql/internal/reader"
	"github.com/roach88/luxql/internal/schema"
	"github.com/roach88/luxql/internal/sparql"
	"github.com/roach88/luxql/internal/sparqltext"
	"github.com/roach88/luxql/internal/translate"
)

// Harness runs scenarios against one schema and translator configuration.
type Harness struct {
	reader     *reader.Reader
	translator *translate.Translator
	logger     *slog.Logger
}

// Option configures a Harness.
type Option func(*harnessOptions)

type harnessOptions struct {
	cfg    translate.Config
	logger *slog.Logger
}

// WithConfig sets the translator configuration.
func WithConfig(cfg translate.Config) Option {
	return func(o *harnessOptions) { o.cfg = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *harnessOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns a Harness over s.
func New(s *schema.Schema, opts ...Option) *Harness {
	o := harnessOptions{
		cfg:    translate.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Harness{
		reader:     reader.New(s, reader.WithLogger(o.logger)),
		translator: translate.New(s, translate.WithConfig(o.cfg), translate.WithLogger(o.logger)),
		logger:     o.logger,
	}
}

// Run executes a scenario and returns the result. The returned error is
// reserved for failures of the harness itself; translation failures are
// recorded in the result and compared against expect_error.
func (h *Harness) Run(sc *Scenario) (*Result, error) {
	if sc == nil {
		return nil, fmt.Errorf("nil scenario")
	}
	result := NewResult(sc.Name)

	sel, err := h.Translate(sc)
	if err == nil {
		result.Warnings = append(result.Warnings, sparql.Check(sel)...)
		result.SPARQL, err = sparqltext.Render(sel)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: render: %w", sc.Name, err)
		}
	}

	if sc.ExpectError != "" {
		want, _ := qerr.ParseKind(sc.ExpectError)
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("expected %s, translation succeeded", want))
		case !errors.Is(err, want):
			result.AddError(fmt.Sprintf("expected %s, got %v", want, err))
		}
		if err != nil {
			result.ErrorKind = qerr.KindOf(err).String()
		}
		h.logger.Debug("scenario finished", "name", sc.Name, "pass", result.Pass)
		return result, nil
	}

	if err != nil {
		if k := qerr.KindOf(err); k != 0 {
			result.ErrorKind = k.String()
		}
		result.AddError(fmt.Sprintf("translation failed: %v", err))
		return result, nil
	}

	for _, msg := range EvaluateAssertions(result, sc.Assertions) {
		result.AddError(msg)
	}
	h.logger.Debug("scenario finished", "name", sc.Name, "pass", result.Pass)
	return result, nil
}

// Translate reads the scenario's query and translates it with the
// scenario's entry point.
func (h *Harness) Translate(sc *Scenario) (*sparql.Select, error) {
	doc := sc.Query
	if doc == nil {
		doc = reader.FromText(sc.Text)
	}
	tree, err := h.reader.Read(doc, sc.Scope)
	if err != nil {
		return nil, err
	}
	return Dispatch(h.translator, tree, sc)
}

// Dispatch calls the translator entry point named by sc.Kind.
func Dispatch(t *translate.Translator, tree query.Node, sc *Scenario) (*sparql.Select, error) {
	switch sc.Kind {
	case KindSearch, "":
		return t.Search(tree, translate.SearchOptions{
			Scope: sc.Scope, Limit: sc.Limit, Offset: sc.Offset, Sort: sc.Sort, Order: sc.Order,
		})
	case KindCount:
		return t.Count(tree, sc.Scope)
	case KindFacet, KindFacetCount:
		facet, err := t.FacetPredicate(sc.Scope, sc.Facet)
		if err != nil {
			return nil, err
		}
		if sc.Kind == KindFacetCount {
			return t.FacetCount(tree, facet, sc.Scope)
		}
		return t.Facet(tree, facet, translate.FacetOptions{Scope: sc.Scope, Limit: sc.Limit, Offset: sc.Offset})
	case KindRelated:
		return t.Related(tree, translate.RelatedOptions{Scope: sc.Scope, Anchor: sc.Anchor})
	}
	return nil, qerr.Structure("kind", "unknown entry point %q", sc.Kind)
}

// RunAll runs every scenario and returns the results in order.
func (h *Harness) RunAll(scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	for _, sc := range scenarios {
		r, err := h.Run(sc)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
