package queryir

// Report columns. Every non-empty shape fragment projects these, in this
// order, after any context projection.
const (
	ColThis      = "this"
	ColMessage   = "message"
	ColSeverity  = "severity"
	ColSubject   = "subject"
	ColPredicate = "predicate"
	ColObject    = "object"
	ColShape     = "shape"

	ColParent      = "parent"
	ColGrandparent = "grandparent"
)

// ReportColumns lists the columns a violation row carries.
var ReportColumns = []string{ColThis, ColMessage, ColSeverity, ColSubject, ColPredicate, ColObject}

// Var renders a variable name with its sigil.
func Var(name string) string { return "?" + name }

// Pattern is a graph pattern node.
//
// This is a sealed interface - only types in this package implement it.
type Pattern interface {
	patternNode()
}

// Raw is opaque query text, emitted verbatim.
type Raw string

// Seq is a conjunction of patterns rendered one after another.
// Nil and empty members are skipped.
type Seq []Pattern

// Group is a conjunction wrapped in braces.
type Group []Pattern

// Union is a disjunction; each branch is wrapped in braces.
type Union []Pattern

// Minus removes from Left every solution compatible with any Right pattern.
type Minus struct {
	Left  Pattern
	Right []Pattern
}

// Filter is a FILTER constraint over Expr.
type Filter struct {
	Expr string
}

// Bind assigns Expr to Var.
type Bind struct {
	Expr string
	Var  string
}

// Values is an inline data block. Rows hold already rendered terms.
type Values struct {
	Vars []string
	Rows [][]string
}

// Projection is one projected column: either a plain variable or
// (Expr AS ?Var).
type Projection struct {
	Var  string
	Expr string
}

// Select is a SELECT query. Nested in a pattern it renders as a sub-select.
type Select struct {
	// Comment is emitted as a leading "# ..." line.
	Comment    string
	Distinct   bool
	Projection []Projection
	Where      Pattern
	GroupBy    []string
	Having     string
}

// Fragment is rendered query text together with its projected columns.
// Columns is nil when the text came from an opaque source.
type Fragment struct {
	Text    string
	Columns []string
}

func (Raw) patternNode()      {}
func (Seq) patternNode()      {}
func (Group) patternNode()    {}
func (Union) patternNode()    {}
func (Minus) patternNode()    {}
func (Filter) patternNode()   {}
func (Bind) patternNode()     {}
func (Values) patternNode()   {}
func (*Select) patternNode()  {}
func (Fragment) patternNode() {}

// Vars builds plain projections for names.
func Vars(names ...string) []Projection {
	out := make([]Projection, len(names))
	for i, n := range names {
		out[i] = Projection{Var: n}
	}
	return out
}

// As builds an (expr AS ?name) projection.
func As(expr, name string) Projection {
	return Projection{Var: name, Expr: expr}
}

// Columns returns the projected column names in order.
func (s *Select) Columns() []string {
	cols := make([]string, len(s.Projection))
	for i, p := range s.Projection {
		cols[i] = p.Var
	}
	return cols
}

// HasColumns reports whether the fragment is known to project every name.
// Fragments with unknown columns report false.
func (f Fragment) HasColumns(names ...string) bool {
	if f.Columns == nil {
		return false
	}
	have := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		have[c] = true
	}
	for _, n := range names {
		if !have[n] {
			return false
		}
	}
	return true
}
