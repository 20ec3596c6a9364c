package sparqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luxql/internal/sparql"
)

func TestRenderSearch(t *testing.T) {
	s := &sparql.Select{
		Prefixes: []sparql.Prefix{{Name: "lux", IRI: sparql.NSLux}},
		Projections: []sparql.Projection{
			{Expr: sparql.Var("uri")},
			{Expr: sparql.Aggregate{Func: "SUM", Arg: sparql.Var("score")}, As: "sscore"},
		},
		Where: sparql.NewGroup(sparql.Plain,
			sparql.T(sparql.Var("uri"), sparql.RDFType, sparql.Lux("Item")),
			sparql.NewGroup(sparql.Plain,
				sparql.T(sparql.Var("uri"), sparql.Lux("itemName"), sparql.Var("name")),
			),
			sparql.NewGroup(sparql.Union,
				sparql.T(sparql.Var("uri"), sparql.Inverse{Of: sparql.Lux("carries")}, sparql.Var("var0")),
			),
			sparql.NewGroup(sparql.Optional,
				sparql.T(sparql.Var("uri"), sparql.Sequence{Steps: []sparql.Term{sparql.Lux("itemAny"), sparql.Lux("primaryName")}}, sparql.Var("ref")),
			),
			sparql.NewGroup(sparql.NotExists,
				sparql.T(sparql.Var("uri"), sparql.Lux("itemHasDigitalImage"), sparql.Typed("1", sparql.XSD("decimal"))),
			),
			sparql.Filter{Expr: sparql.Call{Func: "CONTAINS", Args: []sparql.Expr{
				sparql.Call{Func: "LCASE", Args: []sparql.Expr{sparql.Var("name")}},
				sparql.Str(`say "hi"`),
			}}},
			sparql.Bind{Expr: sparql.Sum(
				sparql.Coalesce0(sparql.Var("score_0")),
				sparql.Coalesce0(sparql.Var("score_1")),
			), Var: "score"},
			sparql.Values{Var: "var0", Terms: []sparql.Term{sparql.IRI("https://example.org/work/1")}},
		),
		GroupBy: []sparql.Var{"uri"},
		OrderBy: []sparql.OrderKey{{Expr: sparql.Var("sscore"), Desc: true}},
		Limit:   25,
		Offset:  50,
	}

	got, err := Render(s)
	require.NoError(t, err)

	want := `PREFIX lux: <https://lux.collections.yale.edu/ns/>
SELECT ?uri (SUM(?score) AS ?sscore) WHERE {
  ?uri a lux:Item .
  {
    ?uri lux:itemName ?name .
  }
  UNION {
    ?uri ^lux:carries ?var0 .
  }
  OPTIONAL {
    ?uri lux:itemAny/lux:primaryName ?ref .
  }
  FILTER NOT EXISTS {
    ?uri lux:itemHasDigitalImage "1"^^xsd:decimal .
  }
  FILTER(CONTAINS(LCASE(?name), "say \"hi\""))
  BIND(COALESCE(?score_0, 0) + COALESCE(?score_1, 0) AS ?score)
  VALUES ?var0 { <https://example.org/work/1> }
}
GROUP BY ?uri
ORDER BY DESC(?sscore)
LIMIT 25
OFFSET 50
`
	assert.Equal(t, want, got)
}

func TestRenderSubSelect(t *testing.T) {
	inner := &sparql.Select{
		Distinct:    true,
		Projections: []sparql.Projection{{Expr: sparql.Var("uri")}},
		Where: sparql.NewGroup(sparql.Plain,
			sparql.T(sparql.Var("uri"), sparql.RDFType, sparql.Lux("Item")),
		),
	}
	outer := &sparql.Select{
		Projections: []sparql.Projection{
			{Expr: sparql.Var("facet")},
			{Expr: sparql.Aggregate{Func: "COUNT", Arg: sparql.Var("facet")}, As: "facetCount"},
		},
		Where: sparql.NewGroup(sparql.Plain,
			sparql.SubSelect{Select: inner},
			sparql.T(sparql.Var("uri"), sparql.Lux("itemClassification"), sparql.Var("facet")),
		),
		GroupBy: []sparql.Var{"facet"},
		OrderBy: []sparql.OrderKey{{Expr: sparql.Var("facetCount"), Desc: true}},
	}

	got, err := Render(outer)
	require.NoError(t, err)
	assert.Equal(t, `SELECT ?facet (COUNT(?facet) AS ?facetCount) WHERE {
  {
    SELECT DISTINCT ?uri WHERE {
      ?uri a lux:Item .
    }
  }
  ?uri lux:itemClassification ?facet .
}
GROUP BY ?facet
ORDER BY DESC(?facetCount)
`, got)
}

func TestRenderExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr sparql.Expr
		want string
	}{
		{"count distinct", sparql.Aggregate{Func: "COUNT", Distinct: true, Arg: sparql.Var("uri")}, "COUNT(DISTINCT ?uri)"},
		{"not call", sparql.Not{Expr: sparql.Call{Func: "isNumeric", Args: []sparql.Expr{sparql.Var("v")}}}, "!isNumeric(?v)"},
		{"not binary", sparql.Not{Expr: sparql.Binary{Op: "=", Left: sparql.Var("a"), Right: sparql.Number("1")}}, "!(?a = 1)"},
		{"product in sum", sparql.Sum(
			sparql.Binary{Op: "*", Left: sparql.Var("a"), Right: sparql.Number("3")},
			sparql.Binary{Op: "*", Left: sparql.Var("b"), Right: sparql.Number("10")},
		), "(?a * 3) + (?b * 10)"},
		{"and of comparisons", sparql.Binary{Op: "&&",
			Left:  sparql.Binary{Op: "<=", Left: sparql.Var("b"), Right: sparql.Typed("2000-01-01T00:00:00.000Z", "xsd:dateTime")},
			Right: sparql.Binary{Op: ">=", Left: sparql.Var("e"), Right: sparql.Typed("2000-01-01T00:00:00.000Z", "xsd:dateTime")},
		}, `(?b <= "2000-01-01T00:00:00.000Z"^^xsd:dateTime) && (?e >= "2000-01-01T00:00:00.000Z"^^xsd:dateTime)`},
		{"not equal iri", sparql.Binary{Op: "!=", Left: sparql.Var("uri"), Right: sparql.IRI("URI-HERE")}, "?uri != <URI-HERE>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&renderer{}).expr(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRejectsUnsafeText(t *testing.T) {
	tests := []struct {
		name string
		el   sparql.Element
	}{
		{"iri with brace", sparql.Values{Var: "uri", Terms: []sparql.Term{sparql.IRI("https://x/> } DROP {")}}},
		{"bad variable", sparql.Bind{Expr: sparql.Number("0"), Var: "a b"}},
		{"bad number", sparql.Bind{Expr: sparql.Number("1; DROP"), Var: "n"}},
		{"bad prefixed name", sparql.T(sparql.Var("uri"), sparql.PName("lux:a b"), sparql.Var("o"))},
		{"nil term", sparql.T(sparql.Var("uri"), nil, sparql.Var("o"))},
		{"empty path", sparql.T(sparql.Var("uri"), sparql.Sequence{}, sparql.Var("o"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(&sparql.Select{
				Projections: []sparql.Projection{{Expr: sparql.Var("uri")}},
				Where:       sparql.NewGroup(sparql.Plain, tt.el),
			})
			assert.Error(t, err)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(nil)
	assert.Error(t, err)

	_, err = Render(&sparql.Select{})
	assert.ErrorContains(t, err, "no WHERE")

	_, err = Render(&sparql.Select{
		Projections: []sparql.Projection{{Expr: sparql.Aggregate{Func: "COUNT", Arg: sparql.Var("uri")}}},
		Where:       sparql.NewGroup(sparql.Plain),
	})
	assert.ErrorContains(t, err, "needs an alias")
}

func TestRenderDeterministic(t *testing.T) {
	s := &sparql.Select{
		Prefixes:    sparql.DefaultPrefixes(),
		Projections: []sparql.Projection{{Expr: sparql.Aggregate{Func: "COUNT", Distinct: true, Arg: sparql.Var("uri")}, As: "count"}},
		Where:       sparql.NewGroup(sparql.Plain, sparql.T(sparql.Var("uri"), sparql.RDFType, sparql.Lux("Agent"))),
	}
	first, err := Render(s)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Render(s)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
