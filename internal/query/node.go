package query

import (
	"fmt"
	"slices"
)

// Operator is a Boolean node's logical operator.
type Operator string

const (
	And Operator = "AND"
	Or  Operator = "OR"
	Not Operator = "NOT"
)

// Operators lists the valid operators.
var Operators = []Operator{And, Or, Not}

// ParseOperator reports whether s names an operator.
func ParseOperator(s string) (Operator, bool) {
	op := Operator(s)
	if slices.Contains(Operators, op) {
		return op, true
	}
	return "", false
}

// Node is a query tree node.
//
// This is a sealed interface - only *Root, *Boolean, *Relationship and
// *Leaf implement it.
type Node interface {
	// Parent returns the node this one is attached to, or nil.
	Parent() Node
	queryNode()
}

// Root binds exactly one top-level child for one anchor scope.
type Root struct {
	Scope string
	Child Node
}

// Boolean combines its children with AND, OR or NOT.
type Boolean struct {
	Operator Operator
	Children []Node

	// Scope is the scope the children are evaluated in. Inherited from the
	// parent, or resolved from the children when attached unanchored.
	// Empty until resolved.
	Scope string

	parent Node
	// candidates are the scopes this boolean may still be placed under.
	// nil means unconstrained.
	candidates []string
}

// Relationship follows Field from the parent's scope into Target.
type Relationship struct {
	Field string
	Child Node

	// Scope is the scope Field is defined under (the parent's scope).
	Scope string
	// Target is the scope Field leads to; the child is evaluated there.
	Target string

	parent     Node
	candidates []string
}

// Leaf is a terminal field/value test.
type Leaf struct {
	Field string
	// Value is the canonical string form: numbers in shortest decimal form,
	// booleans as "1"/"0".
	Value      string
	Comparator string
	Options    []string
	Weight     int
	Complete   bool

	// Relation is the resolved leaf kind (text, date, float, boolean).
	Relation string
	// Scope is the scope Field is defined under (the parent's scope).
	Scope string

	raw        any
	parent     Node
	candidates []string
}

func (*Root) queryNode()         {}
func (*Boolean) queryNode()      {}
func (*Relationship) queryNode() {}
func (*Leaf) queryNode()         {}

func (*Root) Parent() Node           { return nil }
func (b *Boolean) Parent() Node      { return b.parent }
func (r *Relationship) Parent() Node { return r.parent }
func (l *Leaf) Parent() Node         { return l.parent }

// CandidateScopes returns the scopes n may still be placed under, sorted.
// nil means unconstrained (an unresolved Boolean with no scoped children).
func CandidateScopes(n Node) []string {
	switch n := n.(type) {
	case *Root:
		return []string{n.Scope}
	case *Boolean:
		return slices.Clone(n.candidates)
	case *Relationship:
		return slices.Clone(n.candidates)
	case *Leaf:
		return slices.Clone(n.candidates)
	default:
		panic(fmt.Sprintf("query: unknown node %T", n))
	}
}

// ProvidedScope returns the scope n's children are evaluated in, or "" if
// that is not known yet. Leaves provide no scope.
func ProvidedScope(n Node) string {
	switch n := n.(type) {
	case *Root:
		return n.Scope
	case *Boolean:
		return n.Scope
	case *Relationship:
		return n.Target
	case *Leaf:
		return ""
	default:
		panic(fmt.Sprintf("query: unknown node %T", n))
	}
}

// AnchorScope walks up from n to its Root and returns the anchor scope, or
// "" when n is not under a Root.
func AnchorScope(n Node) string {
	for n != nil {
		if r, ok := n.(*Root); ok {
			return r.Scope
		}
		n = n.Parent()
	}
	return ""
}

// Top returns the top-level query node: the Root's child when n is a Root,
// n itself otherwise.
func Top(n Node) Node {
	if r, ok := n.(*Root); ok {
		return r.Child
	}
	return n
}

func (op Operator) String() string { return string(op) }
