package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/query"
	"github.com/roach88/luxql/internal/sparql"
)

const (
	containsWord   = sparql.PName("ql:contains-word")
	containsEntity = sparql.PName("ql:contains-entity")
)

// terms splits a text value into lower-cased search words and the quoted
// multi-word phrases among them. Unbalanced quotes yield no phrases.
func terms(value string) (words, phrases []string) {
	value = strings.ToLower(value)
	if tokens, err := shlex.Split(value); err == nil {
		for _, tok := range tokens {
			if strings.Contains(tok, " ") {
				phrases = append(phrases, tok)
			}
		}
	}
	words = strings.Fields(strings.ReplaceAll(value, `"`, ""))
	return words, phrases
}

// sanitize makes s usable inside a variable name: every character outside
// [A-Za-z0-9_] becomes _<code point>_, so "o'malley" is "o_39_malley".
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "_%d_", r)
	}
	return b.String()
}

// wordScore is the score variable the text index binds for word matched
// through the text variable txt.
func wordScore(txt sparql.Var, word string) sparql.Var {
	return sparql.Var("ql_score_word_" + string(txt) + "_" + sanitize(word))
}

func weighted(e sparql.Expr, weight int) sparql.Expr {
	return sparql.Binary{Op: "*", Left: e, Right: sparql.Number(strconv.Itoa(weight))}
}

// wordMatch emits the three triples matching text through predicate:
//
//	?subject pred ?field .
//	?txt ql:contains-word "text" .
//	?txt ql:contains-entity ?field .
func wordMatch(subject sparql.Var, pred sparql.Term, field, txt sparql.Var, text string) []sparql.Element {
	return []sparql.Element{
		sparql.T(subject, pred, field),
		sparql.T(txt, containsWord, sparql.Str(text)),
		sparql.T(txt, containsEntity, field),
	}
}

func (t *Translator) text(cg *codegen, counter int, n *query.Leaf, subject sparql.Var, scope string, g *sparql.Group) error {
	switch n.Field {
	case "id":
		g.Add(sparql.Values{Var: subject, Terms: []sparql.Term{sparql.IRI(n.Value)}})
		return nil
	case "identifier":
		g.Add(sparql.T(subject, sparql.Lux(scope+"Identifier"), sparql.Str(n.Value)))
		return nil
	case "recordType":
		g.Add(sparql.T(subject, sparql.RDFType, sparql.Lux(n.Value)))
		return nil
	}

	words, phrases := terms(n.Value)
	if len(words) == 0 {
		return qerr.Value(n.Field, "no search terms")
	}
	switch n.Field {
	case "name":
		return t.words(cg, counter, subject, sparql.Lux(scope+"Name"), t.cfg.NameWeight, words, phrases, g)
	case "text":
		return t.anywhere(cg, counter, subject, scope, words, phrases, g)
	default:
		return t.words(cg, counter, subject, leafPredicate(scope, n.Field), t.cfg.ReferenceNameWeight, words, phrases, g)
	}
}

// words matches all words against one predicate, scoring each word match
// by weight and filtering on phrases.
func (t *Translator) words(cg *codegen, counter int, subject sparql.Var, pred sparql.Term, weight int, words, phrases []string, g *sparql.Group) error {
	field, txt := v("field0_", counter, 0), v("txt0_", counter, 0)

	block := sparql.NewGroup(sparql.Plain, wordMatch(subject, pred, field, txt, strings.Join(words, " "))...)
	if cg.scoring {
		scores := make([]sparql.Expr, len(words))
		for i, w := range words {
			scores[i] = weighted(wordScore(txt, w), weight)
		}
		score := v("score_", counter)
		block.Add(sparql.Bind{Expr: sparql.Sum(scores...), Var: score})
		cg.scored = append(cg.scored, score)
	}
	for _, p := range phrases {
		block.Add(phraseFilter(field, p))
	}
	g.Add(block)
	return nil
}

// anywhere is the free-text search. Each word must match either the names
// of records this one refers to, or the record's own text; whichever
// matches, both contribute to the score when present:
//
//	{
//	  { { refs } OPTIONAL { text } BIND(... AS ?score_c_w) }
//	  UNION { { text } OPTIONAL { refs } BIND(... AS ?score_c_w) }
//	}
func (t *Translator) anywhere(cg *codegen, counter int, subject sparql.Var, scope string, words, phrases []string, g *sparql.Group) error {
	top := sparql.NewGroup(sparql.Plain)
	var wordScores []sparql.Expr

	for wx, w := range words {
		score := v("score_", counter, wx)
		refsScore := v("score_refs_", counter, wx)
		textScore := v("score_text_", counter, wx)
		combined := sparql.Bind{Expr: sparql.Sum(sparql.Coalesce0(refsScore), sparql.Coalesce0(textScore)), Var: score}

		refsFirst := sparql.NewGroup(sparql.Plain,
			t.refs(cg, counter, wx, subject, scope, w, sparql.Plain),
			t.recordText(cg, counter, wx, subject, scope, w, sparql.Optional),
		)
		textFirst := sparql.NewGroup(sparql.Union,
			t.recordText(cg, counter, wx, subject, scope, w, sparql.Plain),
			t.refs(cg, counter, wx, subject, scope, w, sparql.Optional),
		)
		if cg.scoring {
			refsFirst.Add(combined)
			textFirst.Add(combined)
			wordScores = append(wordScores, sparql.Coalesce0(score))
		}
		top.Add(sparql.NewGroup(sparql.Plain, refsFirst, textFirst))
	}

	for _, p := range phrases {
		top.Add(phraseFilter(v("field2_", counter, 0), p))
	}
	g.Add(top)

	if cg.scoring {
		total := v("score_", counter)
		g.Add(sparql.Bind{Expr: sparql.Sum(wordScores...), Var: total})
		cg.scored = append(cg.scored, total)
	}
	return nil
}

// refs matches word against the primary names of referenced records.
func (t *Translator) refs(cg *codegen, counter, wx int, subject sparql.Var, scope, word string, kind sparql.GroupKind) *sparql.Group {
	field, txt := v("field1_", counter, wx), v("txt1_", counter, wx)
	path := sparql.Sequence{Steps: []sparql.Term{sparql.Lux(scope + "Any"), sparql.Lux("primaryName")}}

	block := sparql.NewGroup(kind, wordMatch(subject, path, field, txt, word)...)
	if cg.scoring {
		block.Add(sparql.Bind{
			Expr: weighted(wordScore(txt, word), t.cfg.ReferenceNameWeight),
			Var:  v("score_refs_", counter, wx),
		})
	}
	return block
}

// recordText matches word against the record's full text, scoring a
// further match on its primary name.
func (t *Translator) recordText(cg *codegen, counter, wx int, subject sparql.Var, scope, word string, kind sparql.GroupKind) *sparql.Group {
	field, txt := v("field2_", counter, wx), v("txt2_", counter, wx)
	name, namet := v("name_", counter, wx), v("namet_", counter, wx)

	block := sparql.NewGroup(kind, wordMatch(subject, sparql.Lux("recordText"), field, txt, word)...)
	block.Add(
		sparql.T(subject, sparql.Lux(scope+"PrimaryName"), name),
		sparql.NewGroup(sparql.Optional,
			sparql.T(namet, containsWord, sparql.Str(word)),
			sparql.T(namet, containsEntity, name),
		),
	)
	if cg.scoring {
		block.Add(sparql.Bind{
			Expr: sparql.Sum(
				weighted(wordScore(txt, word), t.cfg.RecordTextWeight),
				weighted(sparql.Coalesce0(wordScore(namet, word)), t.cfg.RecordNameWeight),
			),
			Var: v("score_text_", counter, wx),
		})
	}
	return block
}

func phraseFilter(field sparql.Var, phrase string) sparql.Filter {
	return sparql.Filter{Expr: sparql.Call{Func: "CONTAINS", Args: []sparql.Expr{
		sparql.Call{Func: "LCASE", Args: []sparql.Expr{field}},
		sparql.Str(phrase),
	}}}
}
