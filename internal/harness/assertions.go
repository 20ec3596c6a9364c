package harness

import (
	"fmt"
	"strings"
)

// EvaluateAssertions checks every assertion against the rendered text and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if msg := evaluateAssertion(result, a); msg != "" {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) string {
	switch a.Type {
	case AssertContains:
		if !strings.Contains(result.SPARQL, a.Text) {
			return fmt.Sprintf("query does not contain %q", a.Text)
		}
	case AssertNotContains:
		if strings.Contains(result.SPARQL, a.Text) {
			return fmt.Sprintf("query contains %q", a.Text)
		}
	case AssertCount:
		if n := strings.Count(result.SPARQL, a.Text); n != a.Count {
			return fmt.Sprintf("%q occurs %d times, expected %d", a.Text, n, a.Count)
		}
	case AssertWellFormed:
		if len(result.Warnings) > 0 {
			return fmt.Sprintf("query is not well formed: %s", strings.Join(result.Warnings, "; "))
		}
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}
