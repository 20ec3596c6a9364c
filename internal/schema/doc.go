// Package schema provides the scope schema: the record-type contexts
// (scopes), the fields valid under each scope and what each field means
// there.
//
// A field's relation is either a leaf kind (text, date, float, boolean) or
// the name of another scope, in which case the field is a relationship into
// that scope. The same field name can mean different things under different
// scopes, which is why query nodes resolve their meaning against the scope
// of the node they are attached to.
//
// The schema is loaded once (JSON, YAML, CUE or the embedded default) and
// is immutable afterwards. Share it by pointer.
package schema
