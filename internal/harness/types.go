package harness

// Result is the outcome of one scenario.
type Result struct {
	Name string `json:"name"`

	// Pass indicates overall success.
	Pass bool `json:"pass"`

	// SPARQL is the rendered query text; empty when translation failed.
	SPARQL string `json:"sparql,omitempty"`

	// ErrorKind is the kind of the translation error, if any.
	ErrorKind string `json:"error_kind,omitempty"`

	// Warnings are sparql.Check findings on the translated query.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:     name,
		Pass:     true,
		Warnings: []string{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
