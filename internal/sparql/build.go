package sparql

// Namespaces bound by every query the translator emits.
const (
	NSRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSXSD = "http://www.w3.org/2001/XMLSchema#"
	NSLA  = "https://linked.art/ns/terms/"
	NSLux = "https://lux.collections.yale.edu/ns/"
	NSQL  = "http://qlever.cs.uni-freiburg.de/builtin-functions/"
)

// DefaultPrefixes returns the prefix bindings for rdf, xsd, la, lux and ql.
func DefaultPrefixes() []Prefix {
	return []Prefix{
		{Name: "rdf", IRI: NSRDF},
		{Name: "xsd", IRI: NSXSD},
		{Name: "la", IRI: NSLA},
		{Name: "lux", IRI: NSLux},
		{Name: "ql", IRI: NSQL},
	}
}

// NewGroup returns a group of the given kind holding elems.
func NewGroup(kind GroupKind, elems ...Element) *Group {
	return &Group{Kind: kind, Elements: elems}
}

// Add appends elements to g.
func (g *Group) Add(elems ...Element) {
	g.Elements = append(g.Elements, elems...)
}

// T builds a triple pattern.
func T(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// Lux returns the lux: prefixed name for local.
func Lux(local string) PName {
	return PName("lux:" + local)
}

// XSD returns the xsd: prefixed name for local.
func XSD(local string) PName {
	return PName("xsd:" + local)
}

// Typed returns a typed literal.
func Typed(lexical string, datatype PName) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}
}

// Str returns a plain string literal.
func Str(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// Sum folds exprs into Left + Right + ..., or nil when exprs is empty.
func Sum(exprs ...Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if out == nil {
			out = e
			continue
		}
		out = Binary{Op: "+", Left: out, Right: e}
	}
	return out
}

// Coalesce0 is COALESCE(e, 0).
func Coalesce0(e Expr) Expr {
	return Call{Func: "COALESCE", Args: []Expr{e, Number("0")}}
}
