package sparql

import (
	"fmt"
	"slices"
)

// Check reports structural problems in s that a renderer would turn into
// an invalid or meaningless query. An empty result means s is well formed.
//
// Checked:
//  1. A WHERE group and at least one projection are present
//  2. No group is empty
//  3. A UNION block directly follows another block
//  4. GROUP BY and ORDER BY variables are bound or projected
//  5. Plain projected variables of an aggregating select are grouped
//  6. LIMIT and OFFSET are not negative
//
// Sub-selects are checked recursively. Check is a pure function.
func Check(s *Select) []string {
	c := &checker{warnings: []string{}}
	c.checkSelect(s, "")
	return c.warnings
}

type checker struct {
	warnings []string
}

func (c *checker) addWarning(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checker) checkSelect(s *Select, where string) {
	if s == nil {
		c.addWarning("%snil select", where)
		return
	}
	if len(s.Projections) == 0 {
		c.addWarning("%sselect projects nothing", where)
	}
	if s.Where == nil {
		c.addWarning("%sselect has no WHERE group", where)
		return
	}
	if len(s.Where.Elements) == 0 {
		c.addWarning("%sWHERE group is empty", where)
	}
	c.checkGroup(s.Where, where+"WHERE")

	bound := BoundVars(s.Where)
	aliases := map[Var]bool{}
	aggregating := false
	for _, p := range s.Projections {
		if p.As != "" {
			aliases[p.As] = true
		}
		if containsAggregate(p.Expr) {
			aggregating = true
		}
		if p.As == "" {
			if _, ok := p.Expr.(Var); !ok {
				c.addWarning("%sprojection %T has no alias", where, p.Expr)
			}
		}
	}

	for _, v := range s.GroupBy {
		if !bound[v] {
			c.addWarning("%sGROUP BY ?%s is not bound in WHERE", where, v)
		}
	}
	for _, k := range s.OrderBy {
		for _, v := range exprVars(k.Expr) {
			if !bound[v] && !aliases[v] {
				c.addWarning("%sORDER BY ?%s is neither bound nor projected", where, v)
			}
		}
	}
	if aggregating || len(s.GroupBy) > 0 {
		for _, p := range s.Projections {
			if v, ok := p.Expr.(Var); ok && !slices.Contains(s.GroupBy, v) {
				c.addWarning("%sprojected ?%s is neither grouped nor aggregated", where, v)
			}
		}
	}

	if s.Limit < 0 {
		c.addWarning("%snegative LIMIT %d", where, s.Limit)
	}
	if s.Offset < 0 {
		c.addWarning("%snegative OFFSET %d", where, s.Offset)
	}
}

func (c *checker) checkGroup(g *Group, path string) {
	for i, el := range g.Elements {
		switch el := el.(type) {
		case *Group:
			sub := fmt.Sprintf("%s/%d:%s", path, i, el.Kind)
			if len(el.Elements) == 0 {
				c.addWarning("%s: empty group", sub)
			}
			if el.Kind == Union {
				if i == 0 {
					c.addWarning("%s: UNION block has no preceding block", sub)
				} else if _, ok := g.Elements[i-1].(*Group); !ok {
					c.addWarning("%s: UNION block does not follow a block", sub)
				}
			}
			c.checkGroup(el, sub)
		case SubSelect:
			c.checkSelect(el.Select, fmt.Sprintf("%s/%d:subselect: ", path, i))
		case Values:
			if len(el.Terms) == 0 {
				c.addWarning("%s/%d: VALUES ?%s is empty", path, i, el.Var)
			}
		case Triple, Filter, Bind:
		}
	}
}

// BoundVars returns the variables a group binds: triple positions, BIND
// targets, VALUES variables and sub-select projections. Variables only
// inside FILTER NOT EXISTS blocks are not bound outside them.
func BoundVars(g *Group) map[Var]bool {
	out := map[Var]bool{}
	collectBound(g, out)
	return out
}

func collectBound(g *Group, out map[Var]bool) {
	if g == nil {
		return
	}
	for _, el := range g.Elements {
		switch el := el.(type) {
		case Triple:
			for _, t := range []Term{el.Subject, el.Predicate, el.Object} {
				if v, ok := t.(Var); ok {
					out[v] = true
				}
			}
		case *Group:
			if el.Kind != NotExists {
				collectBound(el, out)
			}
		case Bind:
			out[el.Var] = true
		case Values:
			out[el.Var] = true
		case SubSelect:
			if el.Select == nil {
				continue
			}
			for _, p := range el.Select.Projections {
				if p.As != "" {
					out[p.As] = true
				} else if v, ok := p.Expr.(Var); ok {
					out[v] = true
				}
			}
		case Filter:
		}
	}
}

func exprVars(e Expr) []Var {
	switch e := e.(type) {
	case Var:
		return []Var{e}
	case Call:
		var out []Var
		for _, a := range e.Args {
			out = append(out, exprVars(a)...)
		}
		return out
	case Binary:
		return append(exprVars(e.Left), exprVars(e.Right)...)
	case Not:
		return exprVars(e.Expr)
	case Aggregate:
		return exprVars(e.Arg)
	}
	return nil
}

func containsAggregate(e Expr) bool {
	switch e := e.(type) {
	case Aggregate:
		return true
	case Call:
		for _, a := range e.Args {
			if containsAggregate(a) {
				return true
			}
		}
	case Binary:
		return containsAggregate(e.Left) || containsAggregate(e.Right)
	case Not:
		return containsAggregate(e.Expr)
	}
	return false
}
