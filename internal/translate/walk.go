package translate

import (
	"fmt"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/query"
	"github.com/roach88/luxql/internal/schema"
	"github.com/roach88/luxql/internal/sparql"
)

// codegen is the per-call state of one translation.
type codegen struct {
	// counter numbers relationship and leaf visits; generated variable
	// names embed it.
	counter int
	// scored lists the score variables leaves have bound.
	scored []sparql.Var
	// scoring is set when the query orders by relevance.
	scoring bool
}

func (cg *codegen) next() int {
	n := cg.counter
	cg.counter++
	return n
}

// scoreSum is COALESCE(?score_a, 0) + COALESCE(?score_b, 0) + ..., or 0
// when no leaf was scored.
func (cg *codegen) scoreSum() sparql.Expr {
	if len(cg.scored) == 0 {
		return sparql.Number("0")
	}
	terms := make([]sparql.Expr, len(cg.scored))
	for i, v := range cg.scored {
		terms[i] = sparql.Coalesce0(v)
	}
	return sparql.Sum(terms...)
}

// v formats a generated variable name: v("var", 3) is ?var3 and
// v("field", 0, 3, 1) is ?field0_3_1.
func v(prefix string, parts ...int) sparql.Var {
	name := prefix
	for i, p := range parts {
		if i == 0 {
			name += fmt.Sprint(p)
		} else {
			name += fmt.Sprintf("_%d", p)
		}
	}
	return sparql.Var(name)
}

// node translates n into g with subject as the current subject variable.
// scope is the scope n is evaluated in.
func (t *Translator) node(cg *codegen, n query.Node, subject sparql.Var, scope string, g *sparql.Group) error {
	switch n := n.(type) {
	case *query.Boolean:
		return t.boolean(cg, n, subject, scope, g)
	case *query.Relationship:
		return t.relationship(cg, n, subject, scope, g)
	case *query.Leaf:
		return t.leaf(cg, n, subject, scope, g)
	case *query.Root:
		return qerr.Translation("", "nested root")
	default:
		return qerr.Translation("", "unknown node type %T", n)
	}
}

func (t *Translator) boolean(cg *codegen, n *query.Boolean, subject sparql.Var, scope string, g *sparql.Group) error {
	switch n.Operator {
	case query.And:
		for _, c := range n.Children {
			if err := t.node(cg, c, subject, scope, g); err != nil {
				return err
			}
		}
		return nil

	case query.Or:
		for i, c := range n.Children {
			kind := sparql.Union
			if i == 0 {
				kind = sparql.Plain
			}
			block := sparql.NewGroup(kind)
			if err := t.node(cg, c, subject, scope, block); err != nil {
				return err
			}
			g.Add(block)
		}
		return nil

	case query.Not:
		// Scores bound inside FILTER NOT EXISTS are never visible outside.
		scoring := cg.scoring
		cg.scoring = false
		defer func() { cg.scoring = scoring }()

		block := sparql.NewGroup(sparql.NotExists)
		for _, c := range n.Children {
			if err := t.node(cg, c, subject, scope, block); err != nil {
				return err
			}
		}
		g.Add(block)
		return nil
	}
	return qerr.Translation(string(n.Operator), "unknown boolean operator")
}

func (t *Translator) relationship(cg *codegen, n *query.Relationship, subject sparql.Var, scope string, g *sparql.Group) error {
	counter := cg.next()

	info, ok := t.schema.FieldInfo(scope, n.Field)
	if !ok || schema.IsLeafKind(info.Relation) {
		return qerr.Translation(n.Field, "not a relationship in scope %s", scope)
	}
	pred, err := relationshipPredicate(scope, n.Field)
	if err != nil {
		return err
	}

	// Identity: {"rel": {"id": V}} points straight at <V>.
	if leaf, ok := n.Child.(*query.Leaf); ok && leaf.Field == "id" && leaf.Value != "" {
		g.Add(sparql.T(subject, pred, sparql.IRI(leaf.Value)))
		return nil
	}

	object := v("var", counter)
	g.Add(sparql.T(subject, pred, object))
	return t.node(cg, n.Child, object, info.Relation, g)
}

func (t *Translator) leaf(cg *codegen, n *query.Leaf, subject sparql.Var, scope string, g *sparql.Group) error {
	counter := cg.next()

	info, ok := t.schema.FieldInfo(scope, n.Field)
	if !ok || info.Relation != n.Relation {
		return qerr.Translation(n.Field, "leaf relation %q does not match scope %s", n.Relation, scope)
	}

	switch n.Relation {
	case schema.Text:
		return t.text(cg, counter, n, subject, scope, g)

	case schema.Date:
		begin, end, err := datePredicates(scope, n.Field)
		if err != nil {
			return err
		}
		bv, ev := v("date1_", counter), v("date2_", counter)
		filter, err := dateFilter(n, bv, ev)
		if err != nil {
			return err
		}
		g.Add(sparql.NewGroup(sparql.Plain,
			sparql.T(subject, begin, bv),
			sparql.T(subject, end, ev),
			filter,
		))
		return nil

	case schema.Float:
		op, err := sparqlOp(n)
		if err != nil {
			return err
		}
		fv := v("float", counter)
		g.Add(sparql.NewGroup(sparql.Plain,
			sparql.T(subject, leafPredicate(scope, n.Field), fv),
			sparql.Filter{Expr: sparql.Binary{Op: op, Left: fv, Right: sparql.Typed(n.Value, sparql.XSD("float"))}},
		))
		return nil

	case schema.Boolean:
		g.Add(sparql.NewGroup(sparql.Plain,
			sparql.T(subject, leafPredicate(scope, n.Field), sparql.Typed(n.Value, sparql.XSD("decimal"))),
		))
		return nil
	}
	return qerr.Translation(n.Field, "unknown relation %q", n.Relation)
}

func sparqlOp(n *query.Leaf) (string, error) {
	switch n.Comparator {
	case ">", "<", ">=", "<=", "!=":
		return n.Comparator, nil
	case "==":
		return "=", nil
	}
	return "", qerr.Translation(n.Field, "comparator %q has no SPARQL operator", n.Comparator)
}

// dateFilter compares the leaf's date against the record's date span
// [begin, end]. Later-than comparisons test the start of the span,
// earlier-than comparisons its end; equality means the span contains the
// date.
func dateFilter(n *query.Leaf, begin, end sparql.Var) (sparql.Filter, error) {
	lit := sparql.Typed(n.Value, sparql.XSD("dateTime"))
	within := sparql.Binary{Op: "&&",
		Left:  sparql.Binary{Op: "<=", Left: begin, Right: lit},
		Right: sparql.Binary{Op: ">=", Left: end, Right: lit},
	}
	var expr sparql.Expr
	switch n.Comparator {
	case ">", ">=":
		expr = sparql.Binary{Op: n.Comparator, Left: begin, Right: lit}
	case "<", "<=":
		expr = sparql.Binary{Op: n.Comparator, Left: end, Right: lit}
	case "==":
		expr = within
	case "!=":
		expr = sparql.Not{Expr: within}
	default:
		return sparql.Filter{}, qerr.Translation(n.Field, "comparator %q has no date test", n.Comparator)
	}
	return sparql.Filter{Expr: expr}, nil
}
