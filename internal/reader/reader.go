// Package reader builds query trees from the JSON wire form.
//
// The first key of an object not prefixed with "_" decides the node kind
// by the shape of its value:
//
//	list    -> Boolean (the key is the operator)
//	object  -> Relationship (the key is the field)
//	scalar  -> Leaf (the key is the field)
//
// Sibling keys "_comp", "_options", "_weight" and "_complete" carry a
// leaf's metadata.
package reader

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/query"
	"github.com/roach88/luxql/internal/schema"
)

// Reader parses documents against one schema. It holds no per-document
// state and is safe for concurrent use.
type Reader struct {
	builder *query.Builder
	logger  *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Reader for s.
func New(s *schema.Schema, opts ...Option) *Reader {
	r := &Reader{
		builder: query.NewBuilder(s),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read builds the tree for doc under a Root anchored at scope.
func (r *Reader) Read(doc map[string]any, scope string) (*query.Root, error) {
	if len(doc) == 0 {
		return nil, qerr.Structure("", "query is empty")
	}
	root, err := r.builder.NewRoot(scope)
	if err != nil {
		return nil, err
	}
	if _, err := r.readQuery(doc, root); err != nil {
		return nil, err
	}
	r.logger.Debug("query read", "scope", scope)
	return root, nil
}

// ReadJSON decodes data and reads it. Numbers are kept in their literal
// form so that they round-trip unchanged.
func (r *Reader) ReadJSON(data []byte, scope string) (*query.Root, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, qerr.Structure("", "query is not valid JSON: %v", err)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, qerr.Structure("", "query is not an object")
	}
	return r.Read(doc, scope)
}

// FromText turns a simple search string into the advanced query form: a
// single free-text leaf under AND.
func FromText(q string) map[string]any {
	return map[string]any{
		"AND": []any{map[string]any{"text": q}},
	}
}

func (r *Reader) readQuery(obj map[string]any, parent query.Node) (query.Node, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "" || strings.HasPrefix(k, "_") {
			continue
		}
		switch v := obj[k].(type) {
		case []any:
			return r.readBoolean(k, v, parent)
		case map[string]any:
			return r.readRelationship(k, v, parent)
		case string, bool, json.Number, float64, int, int64:
			return r.readLeaf(k, obj, parent)
		}
	}
	return nil, qerr.Structure("", "invalid query")
}

func (r *Reader) readBoolean(key string, items []any, parent query.Node) (query.Node, error) {
	op, ok := query.ParseOperator(key)
	if !ok {
		return nil, qerr.Structure(key, "unknown boolean; known: %v", query.Operators)
	}
	b, err := r.builder.NewBoolean(op, parent)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || len(obj) == 0 {
			return nil, qerr.Structure(key, "boolean members must be non-empty objects")
		}
		if _, err := r.readQuery(obj, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *Reader) readRelationship(field string, inner map[string]any, parent query.Node) (query.Node, error) {
	rel, err := r.builder.NewRelationship(field, parent)
	if err != nil {
		return nil, err
	}
	if len(inner) == 0 {
		return nil, qerr.Structure(field, "relationship query is empty")
	}
	if _, err := r.readQuery(inner, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *Reader) readLeaf(field string, obj map[string]any, parent query.Node) (query.Node, error) {
	spec := query.LeafSpec{Value: obj[field]}

	if v, ok := obj["_comp"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, qerr.Structure(field, "_comp must be a string")
		}
		spec.Comparator = s
	}
	if v, ok := obj["_options"]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, qerr.Structure(field, "_options must be a list of strings")
		}
		for _, o := range list {
			s, ok := o.(string)
			if !ok {
				return nil, qerr.Structure(field, "_options must be a list of strings")
			}
			spec.Options = append(spec.Options, s)
		}
	}
	if v, ok := obj["_weight"]; ok {
		w, err := intValue(v)
		if err != nil {
			return nil, qerr.Structure(field, "_weight must be an integer")
		}
		spec.Weight = w
	}
	if v, ok := obj["_complete"]; ok {
		c, ok := v.(bool)
		if !ok {
			return nil, qerr.Structure(field, "_complete must be a boolean")
		}
		spec.Complete = c
	}

	return r.builder.NewLeaf(field, spec, parent)
}

func intValue(v any) (int, error) {
	switch v := v.(type) {
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	case float64:
		if v != float64(int(v)) {
			return 0, qerr.Structure("", "not an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	return 0, qerr.Structure("", "not an integer")
}
