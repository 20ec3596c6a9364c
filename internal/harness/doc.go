// Package harness runs query translation scenarios.
//
// A scenario names a scope, an entry point and a query document, and says
// what the translation must produce. Scenarios run reader -> translator ->
// renderer with a fixed schema, so the rendered text is stable and can be
// compared against golden files.
//
// # Scenario Format
//
//	name: item_count_by_producer
//	description: "Identity relationships point straight at the record"
//	scope: item
//	kind: count
//	query:
//	  producedBy:
//	    id: https://lux.collections.yale.edu/data/person/1
//	golden: true
//	assertions:
//	  - type: contains
//	    text: "<https://lux.collections.yale.edu/data/person/1>"
//	  - type: not_contains
//	    text: "?var0"
//
// Instead of query, a scenario may give text, which is read as a simple
// search ({"AND":[{"text": ...}]}). A scenario that must fail gives
// expect_error with an error kind name ("ValueError" or "value").
//
// # Assertion Types
//
//   - contains: the rendered text contains text
//   - not_contains: the rendered text does not contain text
//   - count: text occurs exactly count times
//   - well_formed: sparql.Check reports no warnings
//
// # Golden Files
//
// With golden: true the rendered text is compared against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
