// Package sparql provides the structured select-query IR produced by the
// translator and consumed by a textual renderer.
//
// The IR covers the SPARQL fragment the translator emits and nothing more:
//
//	Select      prefixes, projections (with aggregates), WHERE group,
//	            GROUP BY, ORDER BY, LIMIT, OFFSET, DISTINCT
//	Group       plain, OPTIONAL, UNION (with the preceding sibling) and
//	            FILTER NOT EXISTS blocks
//	Element     Triple, *Group, Filter, Bind, Values, SubSelect
//	Term        Var, IRI, PName, Literal, Number, Inverse, Sequence
//	Expr        Var, IRI, PName, Literal, Number, Call, Binary, Not,
//	            Aggregate
//
// Term, Expr and Element are sealed interfaces using the marker method
// pattern. Only types in this package implement them, which lets renderers
// switch exhaustively:
//
//	switch e := el.(type) {
//	case Triple:
//	case *Group:
//	case Filter:
//	case Bind:
//	case Values:
//	case SubSelect:
//	}
//
// SPARQL MAPPING:
//
//	Group{Kind: Optional}        OPTIONAL { ... }
//	Group{Kind: Union}           UNION { ... }    (joined to the previous block)
//	Group{Kind: NotExists}       FILTER NOT EXISTS { ... }
//	Inverse{PName("lux:x")}      ^lux:x
//	Sequence{a, b}               a/b
//	Literal{"v", "xsd:float"}    "v"^^xsd:float
//	PName(RDFType)               a
//
// The IR does not define SPARQL's full grammar; anything the translator
// never produces has no representation here.
package sparql
