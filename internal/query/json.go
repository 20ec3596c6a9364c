package query

import (
	"encoding/json"

	"github.com/roach88/luxql/internal/qerr"
)

// ToJSON returns the canonical wire form of the tree rooted at n.
// A Root serializes as its child.
func ToJSON(n Node) (map[string]any, error) {
	switch n := n.(type) {
	case *Root:
		if n.Child == nil {
			return nil, qerr.Structure("", "no query has been defined")
		}
		return ToJSON(n.Child)

	case *Boolean:
		if len(n.Children) == 0 {
			return nil, qerr.Structure(string(n.Operator), "boolean is missing children")
		}
		children := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			js, err := ToJSON(c)
			if err != nil {
				return nil, err
			}
			children = append(children, js)
		}
		return map[string]any{string(n.Operator): children}, nil

	case *Relationship:
		if n.Child == nil {
			return nil, qerr.Structure(n.Field, "relationship is missing its child")
		}
		js, err := ToJSON(n.Child)
		if err != nil {
			return nil, err
		}
		return map[string]any{n.Field: js}, nil

	case *Leaf:
		if n.raw == nil {
			return nil, qerr.Structure(n.Field, "leaf has no value")
		}
		js := map[string]any{n.Field: n.Value}
		if n.Comparator != "" {
			js["_comp"] = n.Comparator
		}
		if len(n.Options) > 0 {
			opts := make([]any, len(n.Options))
			for i, o := range n.Options {
				opts[i] = o
			}
			js["_options"] = opts
		}
		if n.Weight != 0 {
			js["_weight"] = n.Weight
		}
		if n.Complete {
			js["_complete"] = true
		}
		return js, nil
	}
	return nil, qerr.Structure("", "unknown node type %T", n)
}

// Marshal encodes the canonical wire form of n. Object keys are sorted.
func Marshal(n Node) ([]byte, error) {
	js, err := ToJSON(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(js)
}
