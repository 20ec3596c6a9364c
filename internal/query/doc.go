// Package query provides the validated query tree: Boolean, Relationship
// and Leaf nodes under a Root that pins the anchor scope.
//
// Node is a sealed interface. Only types in this package implement it, so
// consumers (the translator, ToJSON) switch over it exhaustively:
//
//	switch n := node.(type) {
//	case *Boolean:
//	case *Relationship:
//	case *Leaf:
//	case *Root:
//	}
//
// Nodes are created through a Builder bound to one schema. Every
// constructor validates immediately; attaching a node to a parent runs the
// second phase of scope resolution:
//
//	phase 1 (tentative): field -> candidate parent scopes, from the
//	                     schema's inverted index, filtered by node kind
//	phase 2 (finalize):  field + concrete parent scope -> relation,
//	                     looked up exactly; authoritative
//
// A Boolean attached before its parent is known narrows its own candidate
// scopes as children arrive, and resolves itself once a single scope is
// left. Once a node has a concrete scope, its whole subtree is finalized.
//
// Trees are built once per query, translated once and discarded. A failed
// Attach may leave partially narrowed candidates behind; discard the tree.
package query
