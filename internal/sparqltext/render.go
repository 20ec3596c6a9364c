// Package sparqltext renders the sparql select IR as SPARQL query text.
//
// Output is deterministic: the same IR always renders to the same bytes,
// with two-space indentation and one pattern element per line. Golden
// files in the harness depend on this.
package sparqltext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/luxql/internal/sparql"
)

// Render returns the query text for s.
//
// Variables, IRIs and prefixed names are checked for characters that
// would change the query's structure; literals are escaped.
func Render(s *sparql.Select) (string, error) {
	if s == nil {
		return "", fmt.Errorf("cannot render nil select")
	}
	r := &renderer{}
	for _, p := range s.Prefixes {
		iri, err := r.iri(p.IRI)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&r.b, "PREFIX %s: %s\n", p.Name, iri)
	}
	if err := r.selectQuery(s, 0); err != nil {
		return "", err
	}
	return r.b.String(), nil
}

type renderer struct {
	b strings.Builder
}

func (r *renderer) line(depth int, format string, args ...any) {
	r.b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&r.b, format, args...)
	r.b.WriteByte('\n')
}

func (r *renderer) selectQuery(s *sparql.Select, depth int) error {
	if s.Where == nil {
		return fmt.Errorf("select has no WHERE group")
	}

	items := make([]string, 0, len(s.Projections))
	for _, p := range s.Projections {
		item, err := r.projection(p)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	head := "SELECT "
	if s.Distinct {
		head += "DISTINCT "
	}
	if len(items) == 0 {
		head += "*"
	} else {
		head += strings.Join(items, " ")
	}
	r.line(depth, "%s WHERE {", head)
	if err := r.elements(s.Where.Elements, depth+1); err != nil {
		return err
	}
	r.line(depth, "}")

	if len(s.GroupBy) > 0 {
		vars := make([]string, 0, len(s.GroupBy))
		for _, v := range s.GroupBy {
			text, err := r.variable(v)
			if err != nil {
				return err
			}
			vars = append(vars, text)
		}
		r.line(depth, "GROUP BY %s", strings.Join(vars, " "))
	}
	if len(s.OrderBy) > 0 {
		keys := make([]string, 0, len(s.OrderBy))
		for _, k := range s.OrderBy {
			text, err := r.orderKey(k)
			if err != nil {
				return err
			}
			keys = append(keys, text)
		}
		r.line(depth, "ORDER BY %s", strings.Join(keys, " "))
	}
	if s.Limit > 0 {
		r.line(depth, "LIMIT %d", s.Limit)
	}
	if s.Offset > 0 {
		r.line(depth, "OFFSET %d", s.Offset)
	}
	return nil
}

func (r *renderer) projection(p sparql.Projection) (string, error) {
	if p.As == "" {
		v, ok := p.Expr.(sparql.Var)
		if !ok {
			return "", fmt.Errorf("projection %T needs an alias", p.Expr)
		}
		return r.variable(v)
	}
	expr, err := r.expr(p.Expr)
	if err != nil {
		return "", err
	}
	alias, err := r.variable(p.As)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s AS %s)", expr, alias), nil
}

func (r *renderer) orderKey(k sparql.OrderKey) (string, error) {
	expr, err := r.expr(k.Expr)
	if err != nil {
		return "", err
	}
	if k.Desc {
		return "DESC(" + expr + ")", nil
	}
	if _, ok := k.Expr.(sparql.Var); ok {
		return expr, nil
	}
	return "ASC(" + expr + ")", nil
}

func (r *renderer) elements(elems []sparql.Element, depth int) error {
	for _, el := range elems {
		if err := r.element(el, depth); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) element(el sparql.Element, depth int) error {
	switch el := el.(type) {
	case sparql.Triple:
		s, err := r.term(el.Subject)
		if err != nil {
			return err
		}
		p, err := r.predicate(el.Predicate)
		if err != nil {
			return err
		}
		o, err := r.term(el.Object)
		if err != nil {
			return err
		}
		r.line(depth, "%s %s %s .", s, p, o)

	case *sparql.Group:
		switch el.Kind {
		case sparql.Plain:
			r.line(depth, "{")
		case sparql.Optional:
			r.line(depth, "OPTIONAL {")
		case sparql.Union:
			r.line(depth, "UNION {")
		case sparql.NotExists:
			r.line(depth, "FILTER NOT EXISTS {")
		default:
			return fmt.Errorf("unknown group kind %d", el.Kind)
		}
		if err := r.elements(el.Elements, depth+1); err != nil {
			return err
		}
		r.line(depth, "}")

	case sparql.Filter:
		expr, err := r.expr(el.Expr)
		if err != nil {
			return err
		}
		r.line(depth, "FILTER(%s)", expr)

	case sparql.Bind:
		expr, err := r.expr(el.Expr)
		if err != nil {
			return err
		}
		v, err := r.variable(el.Var)
		if err != nil {
			return err
		}
		r.line(depth, "BIND(%s AS %s)", expr, v)

	case sparql.Values:
		v, err := r.variable(el.Var)
		if err != nil {
			return err
		}
		terms := make([]string, 0, len(el.Terms))
		for _, t := range el.Terms {
			text, err := r.term(t)
			if err != nil {
				return err
			}
			terms = append(terms, text)
		}
		r.line(depth, "VALUES %s { %s }", v, strings.Join(terms, " "))

	case sparql.SubSelect:
		if el.Select == nil {
			return fmt.Errorf("nil sub-select")
		}
		r.line(depth, "{")
		if err := r.selectQuery(el.Select, depth+1); err != nil {
			return err
		}
		r.line(depth, "}")

	default:
		return fmt.Errorf("unsupported element type: %T", el)
	}
	return nil
}

func (r *renderer) predicate(t sparql.Term) (string, error) {
	if t == sparql.Term(sparql.RDFType) {
		return "a", nil
	}
	return r.term(t)
}

func (r *renderer) term(t sparql.Term) (string, error) {
	switch t := t.(type) {
	case sparql.Var:
		return r.variable(t)
	case sparql.IRI:
		return r.iri(t)
	case sparql.PName:
		return r.pname(t)
	case sparql.Literal:
		return r.literal(t)
	case sparql.Number:
		return r.number(t)
	case sparql.Inverse:
		inner, err := r.predicate(t.Of)
		if err != nil {
			return "", err
		}
		if _, ok := t.Of.(sparql.Sequence); ok {
			inner = "(" + inner + ")"
		}
		return "^" + inner, nil
	case sparql.Sequence:
		if len(t.Steps) == 0 {
			return "", fmt.Errorf("empty property path")
		}
		steps := make([]string, 0, len(t.Steps))
		for _, s := range t.Steps {
			text, err := r.predicate(s)
			if err != nil {
				return "", err
			}
			steps = append(steps, text)
		}
		return strings.Join(steps, "/"), nil
	case nil:
		return "", fmt.Errorf("missing term")
	default:
		return "", fmt.Errorf("unsupported term type: %T", t)
	}
}

func (r *renderer) expr(e sparql.Expr) (string, error) {
	switch e := e.(type) {
	case sparql.Var:
		return r.variable(e)
	case sparql.IRI:
		return r.iri(e)
	case sparql.PName:
		return r.pname(e)
	case sparql.Literal:
		return r.literal(e)
	case sparql.Number:
		return r.number(e)
	case sparql.Call:
		args := make([]string, 0, len(e.Args))
		for _, a := range e.Args {
			text, err := r.expr(a)
			if err != nil {
				return "", err
			}
			args = append(args, text)
		}
		return fmt.Sprintf("%s(%s)", e.Func, strings.Join(args, ", ")), nil
	case sparql.Binary:
		left, err := r.operand(e.Left, e.Op, true)
		if err != nil {
			return "", err
		}
		right, err := r.operand(e.Right, e.Op, false)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", left, e.Op, right), nil
	case sparql.Not:
		inner, err := r.expr(e.Expr)
		if err != nil {
			return "", err
		}
		if _, ok := e.Expr.(sparql.Binary); ok {
			inner = "(" + inner + ")"
		}
		return "!" + inner, nil
	case sparql.Aggregate:
		arg, err := r.expr(e.Arg)
		if err != nil {
			return "", err
		}
		if e.Distinct {
			arg = "DISTINCT " + arg
		}
		return fmt.Sprintf("%s(%s)", e.Func, arg), nil
	case nil:
		return "", fmt.Errorf("missing expression")
	default:
		return "", fmt.Errorf("unsupported expression type: %T", e)
	}
}

// operand renders one side of a binary expression. A nested binary is
// parenthesized unless it is the left side of the same associative
// operator, so sums render flat.
func (r *renderer) operand(e sparql.Expr, op string, left bool) (string, error) {
	text, err := r.expr(e)
	if err != nil {
		return "", err
	}
	inner, ok := e.(sparql.Binary)
	if !ok {
		return text, nil
	}
	if left && inner.Op == op && (op == "+" || op == "*" || op == "&&" || op == "||") {
		return text, nil
	}
	return "(" + text + ")", nil
}

func (r *renderer) variable(v sparql.Var) (string, error) {
	if v == "" {
		return "", fmt.Errorf("empty variable name")
	}
	for _, c := range v {
		if !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return "", fmt.Errorf("invalid character %q in variable ?%s", c, v)
		}
	}
	return "?" + string(v), nil
}

func (r *renderer) iri(i sparql.IRI) (string, error) {
	if strings.ContainsAny(string(i), "<>\"{}|^`\\ \t\n\r") {
		return "", fmt.Errorf("invalid IRI %q", string(i))
	}
	return "<" + string(i) + ">", nil
}

func (r *renderer) pname(p sparql.PName) (string, error) {
	prefix, local, ok := strings.Cut(string(p), ":")
	if !ok || strings.ContainsAny(prefix+local, " \t\n\r<>\"{}|^`\\/") {
		return "", fmt.Errorf("invalid prefixed name %q", string(p))
	}
	return string(p), nil
}

func (r *renderer) number(n sparql.Number) (string, error) {
	if _, err := strconv.ParseFloat(string(n), 64); err != nil {
		return "", fmt.Errorf("invalid number %q", string(n))
	}
	return string(n), nil
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func (r *renderer) literal(l sparql.Literal) (string, error) {
	text := `"` + literalEscaper.Replace(l.Lexical) + `"`
	if l.Datatype != "" {
		dt, err := r.pname(l.Datatype)
		if err != nil {
			return "", err
		}
		text += "^^" + dt
	}
	return text, nil
}
