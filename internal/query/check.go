package query

import (
	"github.com/roach88/luxql/internal/qerr"
)

// Validate reports the first reason the tree under n cannot be translated:
// a node whose scope is still unresolved, or a node with the wrong number
// of children. Construction-time rules have already been enforced.
func Validate(n Node) error {
	switch n := n.(type) {
	case *Root:
		if n.Child == nil {
			return qerr.Structure("", "no query has been defined")
		}
		return Validate(n.Child)

	case *Boolean:
		if len(n.Children) == 0 {
			return qerr.Structure(string(n.Operator), "boolean is missing children")
		}
		if n.Scope == "" {
			return qerr.Scope(string(n.Operator), "scope is unresolved; candidates %v", n.candidates)
		}
		for _, c := range n.Children {
			if err := Validate(c); err != nil {
				return err
			}
		}
		return nil

	case *Relationship:
		if n.Child == nil {
			return qerr.Structure(n.Field, "relationship is missing its child")
		}
		if n.Scope == "" || n.Target == "" {
			return qerr.Scope(n.Field, "scope is unresolved; candidates %v", n.candidates)
		}
		return Validate(n.Child)

	case *Leaf:
		if n.Scope == "" || n.Relation == "" {
			return qerr.Scope(n.Field, "scope is unresolved; candidates %v", n.candidates)
		}
		return nil
	}
	return qerr.Structure("", "unknown node type %T", n)
}
