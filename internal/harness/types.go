package harness

// ShapeResult is the outcome for one top-level shape.
type ShapeResult struct {
	Shape       string   `json:"shape"`
	Query       string   `json:"query,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Error       string   `json:"error,omitempty"`
	ErrorCode   string   `json:"error_code,omitempty"`
}

// Scoped reports whether the shape produced a query.
func (r ShapeResult) Scoped() bool { return r.Query != "" }

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if all expectations match.
	Pass bool `json:"pass"`

	Name  string `json:"name"`
	RunID string `json:"run_id"`

	// Shapes holds every top-level shape in graph order. Empty when the
	// run aborted.
	Shapes []ShapeResult `json:"shapes"`

	// Aborted is the error code the run stopped with, if any.
	Aborted string `json:"aborted,omitempty"`

	// Cycles lists shape reference cycles, one path per line.
	Cycles []string `json:"cycles,omitempty"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name, runID string) *Result {
	return &Result{
		Pass:   true,
		Name:   name,
		RunID:  runID,
		Shapes: []ShapeResult{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Shape returns the result for a shape written as "<iri>".
func (r *Result) Shape(iri string) (ShapeResult, bool) {
	for _, s := range r.Shapes {
		if s.Shape == iri {
			return s, true
		}
	}
	return ShapeResult{}, false
}
