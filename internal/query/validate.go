package query

import (
	"encoding/json"
	"strconv"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/schema"
)

// canonicalValue converts a leaf value to its canonical string form.
func canonicalValue(field string, v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", qerr.Value(field, "missing value")
	case string:
		return v, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	default:
		return "", qerr.Value(field, "unsupported value type %T", v)
	}
}

// validateLeaf checks n's value, comparator and options against relation.
// It may rewrite n.Value into the relation's canonical form.
func (b *Builder) validateLeaf(n *Leaf, relation, optionsName string, checkOptions bool) error {
	if n.Comparator != "" && !b.schema.IsValidComparator(n.Comparator) {
		return qerr.Value(n.Field, "invalid comparator %q; valid: %v", n.Comparator, b.schema.Comparators())
	}
	if relation != schema.Text && len(n.Options) > 0 {
		return qerr.Value(n.Field, "options are only allowed on text fields")
	}

	switch relation {
	case schema.Text:
		if _, ok := n.raw.(string); !ok {
			return qerr.Value(n.Field, "expected a string value, got %T", n.raw)
		}
		if checkOptions && optionsName != "" {
			for _, opt := range n.Options {
				if !b.schema.IsValidOption(optionsName, opt) {
					return qerr.Value(n.Field, "option %q is not allowed", opt)
				}
			}
		}

	case schema.Date:
		s, ok := n.raw.(string)
		if !ok || !b.schema.MatchesDateFormat(s) {
			return qerr.Value(n.Field, "%q is not a valid date", n.Value)
		}
		if n.Comparator == "" {
			return qerr.Value(n.Field, "date queries require a comparator")
		}

	case schema.Float:
		if _, err := strconv.ParseFloat(n.Value, 64); err != nil {
			return qerr.Value(n.Field, "%q is not a number", n.Value)
		}
		if _, ok := n.raw.(bool); ok {
			return qerr.Value(n.Field, "expected a number, got a boolean")
		}
		if n.Comparator == "" {
			return qerr.Value(n.Field, "numeric queries require a comparator")
		}

	case schema.Boolean:
		switch v := n.raw.(type) {
		case bool:
		case string:
			if v != "0" && v != "1" {
				return qerr.Value(n.Field, "%q is not a boolean; use \"1\", \"0\", true or false", v)
			}
		default:
			return qerr.Value(n.Field, "expected a boolean, got %T", n.raw)
		}

	default:
		return qerr.Value(n.Field, "unknown relation %q", relation)
	}
	return nil
}
