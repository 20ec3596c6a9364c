package query

import (
	"slices"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/schema"
)

// Builder constructs validated nodes against one schema.
// It holds no per-tree state and is safe for concurrent use.
type Builder struct {
	schema *schema.Schema
}

// NewBuilder returns a Builder bound to s.
func NewBuilder(s *schema.Schema) *Builder {
	return &Builder{schema: s}
}

// Schema returns the schema the builder validates against.
func (b *Builder) Schema() *schema.Schema {
	return b.schema
}

// LeafSpec carries a leaf's value and metadata.
type LeafSpec struct {
	// Value is a string, bool, json.Number or Go numeric value.
	Value      any
	Comparator string
	Options    []string
	Weight     int
	Complete   bool
}

// NewRoot returns an empty Root anchored at scope.
func (b *Builder) NewRoot(scope string) (*Root, error) {
	if !b.schema.IsScope(scope) {
		return nil, qerr.Scope(scope, "unknown scope; valid scopes are %v", b.schema.Scopes())
	}
	return &Root{Scope: scope}, nil
}

// NewBoolean creates a Boolean and, when parent is non-nil, attaches it.
func (b *Builder) NewBoolean(op Operator, parent Node) (*Boolean, error) {
	if _, ok := ParseOperator(string(op)); !ok {
		return nil, qerr.Structure(string(op), "unknown boolean; known: %v", Operators)
	}
	n := &Boolean{Operator: op}
	if parent != nil {
		if err := b.Attach(parent, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// NewRelationship creates a Relationship and, when parent is non-nil,
// attaches it. The target scope is assigned immediately when every
// candidate scope agrees on it.
func (b *Builder) NewRelationship(field string, parent Node) (*Relationship, error) {
	candidates, err := b.tentative(field, false)
	if err != nil {
		return nil, err
	}
	n := &Relationship{Field: field, candidates: candidates}
	if targets := b.relations(field, candidates); len(targets) == 1 {
		n.Target = targets[0]
	}
	if parent != nil {
		if err := b.Attach(parent, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// NewLeaf creates a Leaf and, when parent is non-nil, attaches it. When
// every candidate scope gives the field the same leaf kind, the value is
// validated immediately; otherwise validation waits for a concrete parent.
func (b *Builder) NewLeaf(field string, spec LeafSpec, parent Node) (*Leaf, error) {
	candidates, err := b.tentative(field, true)
	if err != nil {
		return nil, err
	}
	value, err := canonicalValue(field, spec.Value)
	if err != nil {
		return nil, err
	}
	n := &Leaf{
		Field:      field,
		Value:      value,
		Comparator: spec.Comparator,
		Options:    slices.Clone(spec.Options),
		Weight:     spec.Weight,
		Complete:   spec.Complete,
		raw:        spec.Value,
		candidates: candidates,
	}

	if kinds := b.relations(field, candidates); len(kinds) == 1 {
		info, _ := b.schema.FieldInfo(candidates[0], field)
		if err := b.validateLeaf(n, kinds[0], info.AllowedOptionsName, b.sameOptions(field, candidates)); err != nil {
			return nil, err
		}
		n.Relation = kinds[0]
	}

	if parent != nil {
		if err := b.Attach(parent, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Attach adds child under parent, resolving the child's scope against the
// parent's when the parent's scope is known and narrowing the parent's
// candidates when it is not.
func (b *Builder) Attach(parent, child Node) error {
	if parent == nil || child == nil {
		return qerr.Structure("", "cannot attach a nil node")
	}
	if _, ok := child.(*Root); ok {
		return qerr.Structure("", "a root cannot be attached to another node")
	}
	if child.Parent() != nil {
		return qerr.Structure(label(child), "node is already attached")
	}
	switch p := parent.(type) {
	case *Leaf:
		return qerr.Structure(p.Field, "cannot add further query components to a leaf")
	case *Relationship:
		if p.Child != nil {
			return qerr.Structure(p.Field, "relationship already has a child")
		}
	case *Root:
		if p.Child != nil {
			return qerr.Structure("", "already have a top level query")
		}
	}

	if scope := ProvidedScope(parent); scope != "" {
		if err := b.finalize(child, scope); err != nil {
			return err
		}
		link(parent, child)
		return nil
	}

	// Parent's scope is still open: the child must fit at least one of the
	// scopes the parent may yet provide.
	allowed := b.possibleProvided(parent)
	childCandidates := CandidateScopes(child)
	if allowed != nil && childCandidates != nil && len(intersect(allowed, childCandidates)) == 0 {
		return qerr.Scope(label(child), "no possible parent")
	}
	link(parent, child)
	if childCandidates == nil {
		return nil
	}
	return b.narrow(parent, childCandidates)
}

// tentative is phase 1: the scopes in which field is defined with the right
// kind of relation.
func (b *Builder) tentative(field string, leaf bool) ([]string, error) {
	all := b.schema.CandidateScopes(field)
	if len(all) == 0 {
		return nil, qerr.Scope(field, "no possible scope")
	}
	var out []string
	for _, scope := range all {
		info, _ := b.schema.FieldInfo(scope, field)
		if schema.IsLeafKind(info.Relation) == leaf {
			out = append(out, scope)
		}
	}
	if len(out) == 0 {
		if leaf {
			return nil, qerr.Scope(field, "cannot create a leaf: it is a Relationship")
		}
		return nil, qerr.Scope(field, "cannot create a relationship: it is a Leaf")
	}
	return out, nil
}

// finalize is phase 2: fix n's scope to the concrete scope of its parent,
// using the exact schema entry, and finalize the subtree below it.
func (b *Builder) finalize(n Node, scope string) error {
	switch n := n.(type) {
	case *Root:
		return qerr.Structure("", "a root cannot be attached to another node")

	case *Boolean:
		if n.Scope == scope {
			return nil
		}
		if n.Scope != "" || (n.candidates != nil && !slices.Contains(n.candidates, scope)) {
			return qerr.Scope(string(n.Operator), "cannot add boolean to scope %s", scope)
		}
		n.Scope = scope
		n.candidates = []string{scope}
		for _, c := range n.Children {
			if err := b.finalize(c, scope); err != nil {
				return err
			}
		}
		return nil

	case *Relationship:
		if n.Scope == scope {
			return nil
		}
		info, ok := b.schema.FieldInfo(scope, n.Field)
		if !ok || n.Scope != "" {
			return qerr.Scope(n.Field, "cannot add relationship to scope %s", scope)
		}
		if !slices.Contains(n.candidates, scope) && !schema.IsLeafKind(info.Relation) {
			return qerr.Scope(n.Field, "cannot add relationship to scope %s; candidates %v", scope, n.candidates)
		}
		if schema.IsLeafKind(info.Relation) {
			return qerr.Scope(n.Field, "cannot create a relationship: it is a Leaf in scope %s", scope)
		}
		n.Scope = scope
		n.Target = info.Relation
		n.candidates = []string{scope}
		if n.Child != nil {
			return b.finalize(n.Child, n.Target)
		}
		return nil

	case *Leaf:
		if n.Scope == scope {
			return nil
		}
		info, ok := b.schema.FieldInfo(scope, n.Field)
		if !ok || n.Scope != "" {
			return qerr.Scope(n.Field, "cannot add leaf to scope %s", scope)
		}
		if !slices.Contains(n.candidates, scope) && schema.IsLeafKind(info.Relation) {
			return qerr.Scope(n.Field, "cannot add leaf to scope %s; candidates %v", scope, n.candidates)
		}
		if !schema.IsLeafKind(info.Relation) {
			return qerr.Scope(n.Field, "cannot create a leaf: it is a Relationship in scope %s", scope)
		}
		if err := b.validateLeaf(n, info.Relation, info.AllowedOptionsName, true); err != nil {
			return err
		}
		n.Relation = info.Relation
		n.Scope = scope
		n.candidates = []string{scope}
		return nil
	}
	return qerr.Structure("", "unknown node type %T", n)
}

// narrow restricts an unresolved parent to the scopes a newly attached
// child allows, resolving it when one possibility is left and passing the
// restriction on to its own unresolved parent.
func (b *Builder) narrow(n Node, allowed []string) error {
	switch n := n.(type) {
	case *Boolean:
		next := intersect(n.candidates, allowed)
		if len(next) == 0 {
			return qerr.Scope(string(n.Operator), "no possible parent")
		}
		n.candidates = next
		if len(next) == 1 {
			if err := b.finalize(n, next[0]); err != nil {
				return err
			}
		}
		return b.narrowParent(n.parent, next)

	case *Relationship:
		var next []string
		for _, scope := range n.candidates {
			info, _ := b.schema.FieldInfo(scope, n.Field)
			if slices.Contains(allowed, info.Relation) {
				next = append(next, scope)
			}
		}
		if len(next) == 0 {
			return qerr.Scope(n.Field, "no possible parent")
		}
		n.candidates = next
		if targets := b.relations(n.Field, next); len(targets) == 1 && n.Target == "" {
			n.Target = targets[0]
			if n.Child != nil {
				if err := b.finalize(n.Child, n.Target); err != nil {
					return err
				}
			}
		}
		return b.narrowParent(n.parent, next)
	}
	return nil
}

func (b *Builder) narrowParent(parent Node, allowed []string) error {
	if parent == nil || ProvidedScope(parent) != "" {
		return nil
	}
	return b.narrow(parent, allowed)
}

// possibleProvided returns the scopes an unresolved node may still provide
// to its children; nil means unconstrained.
func (b *Builder) possibleProvided(n Node) []string {
	switch n := n.(type) {
	case *Boolean:
		return slices.Clone(n.candidates)
	case *Relationship:
		return b.relations(n.Field, n.candidates)
	}
	return nil
}

// relations returns the distinct relations of field across scopes, sorted.
func (b *Builder) relations(field string, scopes []string) []string {
	var out []string
	for _, scope := range scopes {
		info, ok := b.schema.FieldInfo(scope, field)
		if ok && !slices.Contains(out, info.Relation) {
			out = append(out, info.Relation)
		}
	}
	slices.Sort(out)
	return out
}

// sameOptions reports whether field declares the same option set in every
// scope, so options can be checked before the scope is known.
func (b *Builder) sameOptions(field string, scopes []string) bool {
	var first string
	for i, scope := range scopes {
		info, _ := b.schema.FieldInfo(scope, field)
		if i == 0 {
			first = info.AllowedOptionsName
		} else if info.AllowedOptionsName != first {
			return false
		}
	}
	return true
}

func link(parent, child Node) {
	switch p := parent.(type) {
	case *Root:
		p.Child = child
	case *Boolean:
		p.Children = append(p.Children, child)
	case *Relationship:
		p.Child = child
	}
	switch c := child.(type) {
	case *Boolean:
		c.parent = parent
	case *Relationship:
		c.parent = parent
	case *Leaf:
		c.parent = parent
	}
}

// intersect returns the elements of a also in b, keeping a's order.
// A nil side is unconstrained.
func intersect(a, b []string) []string {
	if a == nil {
		return slices.Clone(b)
	}
	if b == nil {
		return slices.Clone(a)
	}
	out := []string{}
	for _, s := range a {
		if slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}

func label(n Node) string {
	switch n := n.(type) {
	case *Boolean:
		return string(n.Operator)
	case *Relationship:
		return n.Field
	case *Leaf:
		return n.Field
	}
	return ""
}
