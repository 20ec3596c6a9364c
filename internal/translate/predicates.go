package translate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/luxql/internal/qerr"
	"github.com/roach88/luxql/internal/schema"
	"github.com/roach88/luxql/internal/sparql"
)

// relationshipPredicates maps (scope, relationship field) to the local
// name of its lux: predicate. A leading '^' is an inverse path.
// "classification" and "memberOf" are composed from the scope instead.
var relationshipPredicates = map[string]map[string]string{
	"agent": {
		"startAt":              "placeOfAgentBeginning",
		"endAt":                "placeOfAgentEnding",
		"foundedBy":            "agentOfAgentBeginning",
		"gender":               "gender",
		"occupation":           "occupation",
		"nationality":          "nationality",
		"professionalActivity": "typeOfAgentActivity",
		"activeAt":             "placeOfAgentActivity",
		"createdSet":           "^agentOfSetBeginning",
		"produced":             "^agentOfItemBeginning",
		"created":              "^agentOfWorkBeginning",
		"carriedOut":           "^eventCarriedOutBy",
		"curated":              "^setCuratedBy",
		"encountered":          "^agentOfItemEncounter",
		"founded":              "^agentOfAgentBeginning",
		"memberOfInverse":      "^agentMemberOfGroup",
		"influencedProduction": "^agentInfluenceOfItemBeginning",
		"influencedCreation":   "^agentInfluenceOfWorkBeginning",
		"publishedSet":         "^agentOfSetPublication",
		"published":            "^agentOfWorkPublication",
		"subjectOfSet":         "^setAboutAgent",
		"subjectOfWork":        "^workAboutAgent",
	},
	"item": {
		"producedAt":             "placeOfItemBeginning",
		"producedBy":             "agentOfItemBeginning",
		"producedUsing":          "typeOfItemBeginning",
		"productionInfluencedBy": "agentInfluenceOfItemBeginning",
		"encounteredAt":          "placeOfItemEncounter",
		"encounteredBy":          "agentOfItemEncounter",
		"carries":                "carries",
		"material":               "material",
		"subjectOfSet":           "^setAboutItem",
		"subjectOfWork":          "^workAboutItem",
	},
	"concept": {
		"broader":                 "broader",
		"classificationOfSet":     "^setClassification",
		"classificationOfConcept": "^conceptClassification",
		"classificationOfEvent":   "^eventClassification",
		"classificationOfItem":    "^itemClassification",
		"classificationOfAgent":   "^agentClassification",
		"classificationOfPlace":   "^placeClassification",
		"classificationOfWork":    "^workClassification",
		"genderOf":                "^gender",
		"languageOf":              "^workLanguage",
		"languageOfSet":           "^setLanguage",
		"materialOfItem":          "^material",
		"narrower":                "^broader",
		"nationalityOf":           "^nationality",
		"occupationOf":            "^occupation",
		"professionalActivityOf":  "^typeOfAgentActivity",
		"subjectOfSet":            "^setAboutConcept",
		"subjectOfWork":           "^workAboutConcept",
		"usedToProduce":           "^typeOfItemBeginning",
	},
	"event": {
		"carriedOutBy":     "agentOfEvent",
		"tookPlaceAt":      "placeOfEvent",
		"used":             "eventUsedSet",
		"causeOfEvent":     "causeOfEvent",
		"causedCreationOf": "^causeOfWorkBeginning",
		"subjectOfSet":     "^setAboutEvent",
		"subjectOfWork":    "^workAboutEvent",
	},
	"place": {
		"partOf":             "placePartOf",
		"activePlaceOfAgent": "^placeOfAgentActivity",
		"startPlaceOfAgent":  "^placeOfAgentBeginning",
		"producedHere":       "^placeOfItemBeginning",
		"createdHere":        "^placeOfWorkBeginning",
		"endPlaceOfAgent":    "^placeOfAgentEnding",
		"encounteredHere":    "^placeOfItemEncounter",
		"placeOfEvent":       "^placeOfEvent",
		"setPublishedHere":   "^placeOfSetPublication",
		"publishedHere":      "^placeOfWorkPublication",
		"subjectOfSet":       "^setAboutPlace",
		"subjectOfWork":      "^workAboutPlace",
	},
	"set": {
		"aboutConcept":     "setAboutConcept",
		"aboutEvent":       "setAboutEvent",
		"aboutItem":        "setAboutItem",
		"aboutAgent":       "setAboutAgent",
		"aboutPlace":       "setAboutPlace",
		"aboutWork":        "setAboutWork",
		"createdAt":        "placeOfSetBeginning",
		"createdBy":        "agentOfSetBeginning",
		"creationCausedBy": "causeOfSetBeginning",
		"curatedBy":        "setCuratedBy",
		"publishedAt":      "placeOfSetPublication",
		"publishedBy":      "agentOfSetPublication",
		"containingSet":    "^setMemberOfSet",
		"containingItem":   "^itemMemberOfSet",
		"usedForEvent":     "^eventUsedSet",
	},
	"work": {
		"aboutConcept":         "workAboutConcept",
		"aboutEvent":           "workAboutEvent",
		"aboutItem":            "workAboutItem",
		"aboutAgent":           "workAboutAgent",
		"aboutPlace":           "workAboutPlace",
		"aboutWork":            "workAboutWork",
		"createdAt":            "placeOfWorkBeginning",
		"createdBy":            "agentOfWorkBeginning",
		"creationCausedBy":     "causeOfWorkBeginning",
		"creationInfluencedBy": "agentInfluenceOfWorkBeginning",
		"publishedAt":          "placeOfWorkPublication",
		"publishedBy":          "agentOfWorkPublication",
		"language":             "workLanguage",
		"partOfWork":           "workPartOf",
		"subjectOfSet":         "^setAboutWork",
		"subjectOfWork":        "^workAboutWork",
		"carriedBy":            "^carries",
		"containsWork":         "^workPartOf",
	},
}

// dateEvents maps a date field to the event its begin/end predicates
// describe: startDate -> startOf{Scope}Beginning / endOf{Scope}Beginning.
var dateEvents = map[string]string{
	"startDate":       "Beginning",
	"producedDate":    "Beginning",
	"createdDate":     "Beginning",
	"endDate":         "Ending",
	"activeDate":      "Activity",
	"publishedDate":   "Publication",
	"encounteredDate": "Encounter",
}

// dimensionFields use an unscoped predicate: lux:height, lux:width, ...
var dimensionFields = map[string]bool{
	"height":    true,
	"width":     true,
	"depth":     true,
	"weight":    true,
	"dimension": true,
}

// title upper-cases the first letter and keeps the rest: "item" -> "Item",
// "hasDigitalImage" -> "HasDigitalImage". A Caser is stateful, so each call
// gets its own.
func title(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// relationshipPredicate returns the predicate for a relationship field
// defined under scope.
func relationshipPredicate(scope, field string) (sparql.Term, error) {
	switch field {
	case "classification":
		return sparql.Lux(scope + "Classification"), nil
	case "memberOf":
		group := "Set"
		if scope == "agent" {
			group = "Group"
		}
		return sparql.Lux(scope + "MemberOf" + group), nil
	}
	local, ok := relationshipPredicates[scope][field]
	if !ok {
		return nil, qerr.Translation(field, "no predicate for relationship in scope %s", scope)
	}
	if inv, ok := strings.CutPrefix(local, "^"); ok {
		return sparql.Inverse{Of: sparql.Lux(inv)}, nil
	}
	return sparql.Lux(local), nil
}

// datePredicates returns the begin and end predicates for a date field.
func datePredicates(scope, field string) (begin, end sparql.PName, err error) {
	event, ok := dateEvents[field]
	if !ok {
		return "", "", qerr.Translation(field, "no date predicates in scope %s", scope)
	}
	s := title(scope)
	return sparql.Lux("startOf" + s + event), sparql.Lux("endOf" + s + event), nil
}

// leafPredicate returns the predicate for a float, boolean or plain text
// leaf field.
func leafPredicate(scope, field string) sparql.PName {
	switch {
	case dimensionFields[field]:
		return sparql.Lux(field)
	case strings.HasPrefix(field, scope) && len(field) > len(scope):
		return sparql.Lux(field)
	default:
		return sparql.Lux(scope + title(field))
	}
}

// ParsePredicate reads a predicate written the way SPARQL writes it:
// "a", "<iri>", "prefix:local", "^path" or "step/step". A bare name is
// taken as a lux: local name.
func ParsePredicate(s string) (sparql.Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, qerr.Value("predicate", "empty predicate")
	}
	if inv, ok := strings.CutPrefix(s, "^"); ok {
		of, err := ParsePredicate(inv)
		if err != nil {
			return nil, err
		}
		return sparql.Inverse{Of: of}, nil
	}
	if strings.Contains(s, "/") && !strings.HasPrefix(s, "<") {
		parts := strings.Split(s, "/")
		steps := make([]sparql.Term, 0, len(parts))
		for _, p := range parts {
			step, err := ParsePredicate(p)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step)
		}
		return sparql.Sequence{Steps: steps}, nil
	}
	switch {
	case s == "a":
		return sparql.RDFType, nil
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return sparql.IRI(s[1 : len(s)-1]), nil
	case strings.Contains(s, ":"):
		return sparql.PName(s), nil
	default:
		return sparql.Lux(s), nil
	}
}

// FacetPredicate resolves a facet name under scope to the predicate that
// connects a matching record to its facet values.
//
// Names ending in "RecordType" facet on rdf:type; responsibleCollections
// and responsibleUnits follow fixed paths through the record's sets. Any
// other name is taken as a field of scope: relationships use their
// predicate, date fields their begin predicate, other leaves their leaf
// predicate. Unknown names are parsed as predicates.
func (t *Translator) FacetPredicate(scope, name string) (sparql.Term, error) {
	switch {
	case strings.HasSuffix(name, "RecordType"):
		return sparql.RDFType, nil
	case strings.HasSuffix(name, "IsOnline"):
		return nil, qerr.Value(name, "facet is not supported")
	case name == "responsibleCollections":
		return sparql.Sequence{Steps: []sparql.Term{sparql.Lux("itemMemberOfSet"), sparql.Lux("setCuratedBy")}}, nil
	case name == "responsibleUnits":
		return sparql.Sequence{Steps: []sparql.Term{
			sparql.Lux("itemMemberOfSet"), sparql.Lux("setCuratedBy"), sparql.Lux("agentMemberOfGroup"),
		}}, nil
	}

	info, ok := t.schema.FieldInfo(scope, name)
	if !ok {
		return ParsePredicate(name)
	}
	switch info.Relation {
	case schema.Date:
		begin, _, err := datePredicates(scope, name)
		return begin, err
	case schema.Text, schema.Float, schema.Boolean:
		return leafPredicate(scope, name), nil
	default:
		return relationshipPredicate(scope, name)
	}
}
