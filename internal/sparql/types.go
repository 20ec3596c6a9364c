package sparql

// Term is a triple-pattern position: subject, predicate or object.
//
// This is a sealed interface - only types in this package implement it.
type Term interface {
	termNode()
}

// Expr is an expression in FILTER, BIND, projections and ORDER BY.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode()
}

// Element is one member of a group graph pattern.
//
// This is a sealed interface - only types in this package implement it.
type Element interface {
	elementNode()
}

// Var is a variable, named without the leading '?'.
type Var string

// IRI is an absolute IRI, rendered in angle brackets.
type IRI string

// PName is a prefixed name such as "lux:itemName".
type PName string

// RDFType is the rdf:type predicate, rendered as "a".
const RDFType PName = "rdf:type"

// Literal is a string literal, optionally typed.
//
//	Literal{Lexical: "1850-01-01T00:00:00.000Z", Datatype: "xsd:dateTime"}
//
// renders as
//
//	"1850-01-01T00:00:00.000Z"^^xsd:dateTime
type Literal struct {
	Lexical  string
	Datatype PName // empty for a plain literal
}

// Number is a numeric literal rendered bare (0, 2, 10).
type Number string

// Inverse is an inverse property path: ^Of.
type Inverse struct {
	Of Term
}

// Sequence is a sequence property path: Steps[0]/Steps[1]/...
type Sequence struct {
	Steps []Term
}

func (Var) termNode()      {}
func (IRI) termNode()      {}
func (PName) termNode()    {}
func (Literal) termNode()  {}
func (Number) termNode()   {}
func (Inverse) termNode()  {}
func (Sequence) termNode() {}

func (Var) exprNode()     {}
func (IRI) exprNode()     {}
func (PName) exprNode()   {}
func (Literal) exprNode() {}
func (Number) exprNode()  {}

// Call is a function call: Func(Args...). Used for COALESCE, LCASE,
// CONTAINS and isNumeric.
type Call struct {
	Func string
	Args []Expr
}

// Binary is an infix expression. Op is one of + * = != < > <= >= && ||.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Not negates an expression: !Expr.
type Not struct {
	Expr Expr
}

// Aggregate is an aggregate call in a projection or ORDER BY:
//
//	Aggregate{Func: "COUNT", Distinct: true, Arg: Var("uri")}
//
// renders as COUNT(DISTINCT ?uri).
type Aggregate struct {
	Func     string
	Distinct bool
	Arg      Expr
}

func (Call) exprNode()      {}
func (Binary) exprNode()    {}
func (Not) exprNode()       {}
func (Aggregate) exprNode() {}

// Triple is a triple pattern. Predicate may be a property path.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// GroupKind says how a group joins its parent.
type GroupKind int

const (
	// Plain is a nested { ... } block.
	Plain GroupKind = iota
	// Optional is OPTIONAL { ... }.
	Optional
	// Union is UNION { ... }, alternative to the preceding sibling block.
	Union
	// NotExists is FILTER NOT EXISTS { ... }.
	NotExists
)

func (k GroupKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Optional:
		return "optional"
	case Union:
		return "union"
	case NotExists:
		return "not-exists"
	}
	return "unknown"
}

// Group is a group graph pattern.
type Group struct {
	Kind     GroupKind
	Elements []Element
}

// Filter is FILTER(Expr).
type Filter struct {
	Expr Expr
}

// Bind is BIND(Expr AS ?Var).
type Bind struct {
	Expr Expr
	Var  Var
}

// Values is an inline data block for one variable: VALUES ?Var { ... }.
type Values struct {
	Var   Var
	Terms []Term
}

// SubSelect nests a complete select inside a group: { SELECT ... }.
type SubSelect struct {
	Select *Select
}

func (Triple) elementNode()    {}
func (*Group) elementNode()    {}
func (Filter) elementNode()    {}
func (Bind) elementNode()      {}
func (Values) elementNode()    {}
func (SubSelect) elementNode() {}

// Prefix binds a prefix name to a namespace IRI.
type Prefix struct {
	Name string
	IRI  IRI
}

// Projection is one SELECT item. With As empty, Expr must be a Var.
type Projection struct {
	Expr Expr
	As   Var
}

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Expr Expr
	Desc bool
}

// Select is a complete select query.
//
// Semantics:
//
//	PREFIX ...
//	SELECT [DISTINCT] <Projections> WHERE <Where>
//	[GROUP BY <GroupBy>] [ORDER BY <OrderBy>] [LIMIT n] [OFFSET n]
//
// Limit and Offset of zero are unset.
type Select struct {
	Prefixes    []Prefix
	Distinct    bool
	Projections []Projection
	Where       *Group
	GroupBy     []Var
	OrderBy     []OrderKey
	Limit       int
	Offset      int
}
