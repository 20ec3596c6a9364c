package testutil

import (
	"github.com/roach88/luxql/internal/schema"
)

// Schema returns the embedded default schema.
func Schema() *schema.Schema {
	return schema.Default()
}

// MixedSchema returns a small schema in which the same field name means
// different things in different scopes:
//
//	field    archive   museum   person
//	date     text      date     date
//	holds    museum    archive  -
//	name     text      text     text
//	label    text      text     -
//	sitter   -         person   -
//	born     -         -        date
//
// "date" has two leaf kinds, so its leaves resolve only once attached.
// "holds" is a relationship whose target depends on the parent scope.
// "name" has one kind everywhere, so it resolves without a parent.
func MixedSchema() *schema.Schema {
	return schema.MustLoad(schema.Raw{
		Terms: map[string]map[string]schema.FieldInfo{
			"archive": {
				"date":  {Relation: schema.Text},
				"holds": {Relation: "museum"},
				"name":  {Relation: schema.Text, AllowedOptionsName: "keyword"},
				"label": {Relation: schema.Text, AllowedOptionsName: "keyword"},
			},
			"museum": {
				"date":   {Relation: schema.Date},
				"holds":  {Relation: "archive"},
				"name":   {Relation: schema.Text, AllowedOptionsName: "keyword"},
				"label":  {Relation: schema.Text},
				"sitter": {Relation: "person"},
			},
			"person": {
				"date": {Relation: schema.Date},
				"name": {Relation: schema.Text, AllowedOptionsName: "keyword"},
				"born": {Relation: schema.Date},
			},
		},
		Options: map[string]schema.OptionSet{
			"keyword": {Allowed: []string{"exact", "stemmed"}},
		},
	})
}
