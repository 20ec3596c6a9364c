package schema

import (
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/roach88/luxql/internal/qerr"
)

// Leaf relation kinds. A field whose relation is not one of these names a
// scope, and the field is a relationship into that scope.
const (
	Text    = "text"
	Date    = "date"
	Float   = "float"
	Boolean = "boolean"
)

// LeafKinds lists the relation kinds a leaf may resolve to.
var LeafKinds = []string{Text, Date, Float, Boolean}

// DefaultComparators is used when the raw schema does not declare any.
var DefaultComparators = []string{">", "<", ">=", "<=", "==", "!="}

// DefaultDateFormat accepts "YYYY-MM-DDThh:mm:ss.000Z" and the negative
// extended-year form ("-002500-01-01T00:00:00.000Z").
const DefaultDateFormat = `^(?:\d{4}|-\d{4,6})-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12]\d|3[01])T(?:[01]\d|2[0-3]):[0-5]\d:[0-5]\d\.\d{3}Z$`

// FieldInfo describes one field under one scope.
type FieldInfo struct {
	// Relation is a leaf kind (text, date, float, boolean) or a scope name.
	Relation string `json:"relation" yaml:"relation"`
	// AllowedOptionsName names an entry in the schema's option sets.
	AllowedOptionsName string `json:"allowedOptionsName,omitempty" yaml:"allowedOptionsName,omitempty"`
	Label              string `json:"label,omitempty" yaml:"label,omitempty"`
}

// OptionSet is a named set of allowed leaf options.
type OptionSet struct {
	Allowed []string `json:"allowed" yaml:"allowed"`
	Default []string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Schema is the immutable scope/field schema. It is built once by Load and
// shared by pointer; no method mutates it, so it is safe for concurrent use.
type Schema struct {
	scopes      []string
	fields      map[string]map[string]FieldInfo
	inverted    map[string][]string
	options     map[string]OptionSet
	comparators map[string]bool
	datePattern *regexp.Regexp
}

// Scopes returns the scope names in sorted order.
func (s *Schema) Scopes() []string {
	return slices.Clone(s.scopes)
}

// IsScope reports whether name is a scope.
func (s *Schema) IsScope(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// IsLeafKind reports whether relation is one of the leaf kinds.
func IsLeafKind(relation string) bool {
	return slices.Contains(LeafKinds, relation)
}

// FieldInfo returns the definition of field under scope.
func (s *Schema) FieldInfo(scope, field string) (FieldInfo, bool) {
	fs, ok := s.fields[scope]
	if !ok {
		return FieldInfo{}, false
	}
	info, ok := fs[field]
	return info, ok
}

// Fields returns the field names defined under scope, sorted.
func (s *Schema) Fields(scope string) []string {
	fs := s.fields[scope]
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CandidateScopes returns every scope in which field is defined, sorted.
// It is the phase-1 lookup of scope resolution.
func (s *Schema) CandidateScopes(field string) []string {
	return slices.Clone(s.inverted[field])
}

// IsValidComparator reports whether sym is an allowed comparator.
func (s *Schema) IsValidComparator(sym string) bool {
	return s.comparators[sym]
}

// Comparators returns the allowed comparators, sorted.
func (s *Schema) Comparators() []string {
	out := make([]string, 0, len(s.comparators))
	for c := range s.comparators {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HasOptionSet reports whether an option set called name is declared.
func (s *Schema) HasOptionSet(name string) bool {
	_, ok := s.options[name]
	return ok
}

// IsValidOption reports whether opt is allowed by the option set name.
func (s *Schema) IsValidOption(name, opt string) bool {
	set, ok := s.options[name]
	if !ok {
		return false
	}
	return slices.Contains(set.Allowed, opt)
}

// MatchesDateFormat reports whether v is an acceptable date literal.
func (s *Schema) MatchesDateFormat(v string) bool {
	return s.datePattern.MatchString(v)
}

// Raw is the decoded form of a schema document, independent of the source
// format (JSON, YAML or CUE).
type Raw struct {
	Terms       map[string]map[string]FieldInfo `json:"terms" yaml:"terms"`
	Options     map[string]OptionSet            `json:"options,omitempty" yaml:"options,omitempty"`
	Comparators []string                        `json:"comparators,omitempty" yaml:"comparators,omitempty"`
	DateFormat  string                          `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty"`
}

// Load validates raw and builds the immutable Schema, including the
// inverted field -> scopes index.
func Load(raw Raw) (*Schema, error) {
	if len(raw.Terms) == 0 {
		return nil, qerr.Schema("terms", "schema has no terms")
	}

	s := &Schema{
		fields:      make(map[string]map[string]FieldInfo, len(raw.Terms)),
		inverted:    make(map[string][]string),
		options:     make(map[string]OptionSet, len(raw.Options)),
		comparators: make(map[string]bool),
	}

	for scope, fields := range raw.Terms {
		if scope == "" {
			return nil, qerr.Schema("terms", "empty scope name")
		}
		if IsLeafKind(scope) {
			return nil, qerr.Schema("terms", "scope %q collides with a leaf relation kind", scope)
		}
		if fields == nil {
			return nil, qerr.Schema("terms."+scope, "missing field map")
		}
		s.scopes = append(s.scopes, scope)
	}
	sort.Strings(s.scopes)

	for name, set := range raw.Options {
		s.options[name] = OptionSet{
			Allowed: slices.Clone(set.Allowed),
			Default: slices.Clone(set.Default),
		}
	}

	for _, scope := range s.scopes {
		fields := raw.Terms[scope]
		copied := make(map[string]FieldInfo, len(fields))
		for field, info := range fields {
			path := fmt.Sprintf("terms.%s.%s", scope, field)
			if field == "" {
				return nil, qerr.Schema("terms."+scope, "empty field name")
			}
			if info.Relation == "" {
				return nil, qerr.Schema(path, "missing relation")
			}
			if !IsLeafKind(info.Relation) {
				if _, ok := raw.Terms[info.Relation]; !ok {
					return nil, qerr.Schema(path, "relation %q is neither a leaf kind nor a scope", info.Relation)
				}
			}
			if info.AllowedOptionsName != "" {
				if _, ok := s.options[info.AllowedOptionsName]; !ok {
					return nil, qerr.Schema(path, "unknown option set %q", info.AllowedOptionsName)
				}
			}
			copied[field] = info
			s.inverted[field] = append(s.inverted[field], scope)
		}
		s.fields[scope] = copied
	}
	// scopes were visited in sorted order, so every inverted entry is sorted

	comparators := raw.Comparators
	if len(comparators) == 0 {
		comparators = DefaultComparators
	}
	for _, c := range comparators {
		s.comparators[c] = true
	}

	format := raw.DateFormat
	if format == "" {
		format = DefaultDateFormat
	}
	re, err := regexp.Compile(format)
	if err != nil {
		return nil, qerr.Schema("dateFormat", "invalid pattern: %v", err)
	}
	s.datePattern = re

	return s, nil
}

// MustLoad is like Load but panics on error.
// Use only in tests or for the embedded default schema.
func MustLoad(raw Raw) *Schema {
	s, err := Load(raw)
	if err != nil {
		panic(err)
	}
	return s
}
