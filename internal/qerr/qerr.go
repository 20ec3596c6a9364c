// Package qerr defines the error taxonomy shared by the schema, query,
// reader and translate packages.
//
// Every error raised while loading a schema, building a query tree or
// translating it is an *Error carrying one Kind. Kind values are themselves
// errors, so callers classify with errors.Is:
//
//	if errors.Is(err, qerr.ErrValue) {
//	    // bad leaf value, report as a client error
//	}
//
// Errors are raised synchronously at the point of violation. Construction
// and translation are deterministic, so nothing in this module retries.
package qerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// ErrSchema reports a malformed or incomplete schema.
	ErrSchema Kind = iota + 1
	// ErrScope reports an unknown scope or a field that is invalid in context.
	ErrScope
	// ErrValue reports a leaf value, comparator or option that does not fit
	// the leaf's relation kind.
	ErrValue
	// ErrStructure reports wrong arity or an unclassifiable document.
	ErrStructure
	// ErrTranslation reports an AST/schema inconsistency reaching code
	// generation. It should be unreachable for validated trees.
	ErrTranslation
)

var kindNames = map[Kind]string{
	ErrSchema:      "SchemaError",
	ErrScope:       "ScopeError",
	ErrValue:       "ValueError",
	ErrStructure:   "StructureError",
	ErrTranslation: "TranslationError",
}

// Stable codes used in CLI output (E200-E299 range).
var kindCodes = map[Kind]string{
	ErrSchema:      "E201",
	ErrScope:       "E202",
	ErrValue:       "E203",
	ErrStructure:   "E204",
	ErrTranslation: "E205",
}

// Error implements the error interface so a Kind can be an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code returns the stable error code for the kind.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "E200"
}

// ParseKind maps a kind name ("ScopeError") or short form ("scope") back to
// a Kind. Used by scenario files that declare an expected failure.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if s == name || s+"Error" == name || capitalize(s)+"Error" == name {
			return k, true
		}
	}
	return 0, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Field   string // field, scope or key the error concerns (may be empty)
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the Kind so errors.Is(err, qerr.ErrScope) works through
// any amount of fmt.Errorf wrapping.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Code returns the error's stable code.
func (e *Error) Code() string {
	return e.Kind.Code()
}

func newf(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Schema builds an ErrSchema error.
func Schema(field, format string, args ...any) *Error {
	return newf(ErrSchema, field, format, args...)
}

// Scope builds an ErrScope error.
func Scope(field, format string, args ...any) *Error {
	return newf(ErrScope, field, format, args...)
}

// Value builds an ErrValue error.
func Value(field, format string, args ...any) *Error {
	return newf(ErrValue, field, format, args...)
}

// Structure builds an ErrStructure error.
func Structure(field, format string, args ...any) *Error {
	return newf(ErrStructure, field, format, args...)
}

// Translation builds an ErrTranslation error.
func Translation(field, format string, args ...any) *Error {
	return newf(ErrTranslation, field, format, args...)
}

// KindOf returns the kind of err, or 0 when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
