// Package expr implements the splice language embedded in template text.
//
// A template is literal query text with splices in square brackets:
//
//	FILTER ( ?this IN ( [l(argument, ", ")] ) )
//
// "[[" stands for a literal "[" and "]]" for a literal "]". Inside a splice:
//
//	term := identifier
//	      | string                                  "..." or '...'
//	      | l(term [, string])     list(...)        expand a list, join
//	      | p(identifier)          path(...)        render a property path
//	      | s(identifier)          shape(...)       compile a sub-shape
//	      | c(p(identifier)|string [,] identifier)  context(...) scope a sub-shape to a path
//
// Parsing is separate from evaluation: Parse produces a Template that can be
// rendered any number of times against different environments.
package expr

// Expr is a splice term.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode()
}

// Ident references a bound name.
type Ident struct {
	Name string
}

// StringLit is a quoted string, rendered verbatim.
type StringLit struct {
	Value string
}

// ListExpr expands Elem in list mode and joins the rendered items.
// An empty Joiner means a single space.
type ListExpr struct {
	Elem   Expr
	Joiner *StringLit
}

// PathExpr renders the node(s) bound to Name as property paths.
type PathExpr struct {
	Name string
}

// ShapeExpr compiles the shape(s) bound to Name under the current context.
type ShapeExpr struct {
	Name string
}

// ContextExpr scopes the shape(s) bound to Name to the path given by Path,
// which is either a *PathExpr or a *StringLit.
type ContextExpr struct {
	Path Expr
	Name string
}

func (*Ident) exprNode()       {}
func (*StringLit) exprNode()   {}
func (*ListExpr) exprNode()    {}
func (*PathExpr) exprNode()    {}
func (*ShapeExpr) exprNode()   {}
func (*ContextExpr) exprNode() {}

// Segment is a piece of a template: literal text or a splice.
type Segment struct {
	Text   string
	Splice Expr
	Offset int
}

// Template is parsed template text.
type Template struct {
	Source   string
	Segments []Segment
}

// HasSplices reports whether the template contains any splice.
func (t *Template) HasSplices() bool {
	for _, s := range t.Segments {
		if s.Splice != nil {
			return true
		}
	}
	return false
}

// Names returns every identifier referenced by the template, in first-use
// order.
func (t *Template) Names() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, s := range t.Segments {
		walk(s.Splice, func(e Expr) {
			switch v := e.(type) {
			case *Ident:
				add(v.Name)
			case *PathExpr:
				add(v.Name)
			case *ShapeExpr:
				add(v.Name)
			case *ContextExpr:
				add(v.Name)
			}
		})
	}
	return names
}

// ShapeNames returns the identifiers whose values are compiled as shapes,
// by s(...) or c(...).
func (t *Template) ShapeNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range t.Segments {
		walk(s.Splice, func(e Expr) {
			var name string
			switch v := e.(type) {
			case *ShapeExpr:
				name = v.Name
			case *ContextExpr:
				name = v.Name
			default:
				return
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		})
	}
	return names
}

// walk visits e after its children, so names come out in source order.
func walk(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ListExpr:
		walk(v.Elem, visit)
		if v.Joiner != nil {
			walk(v.Joiner, visit)
		}
	case *ContextExpr:
		walk(v.Path, visit)
	}
	visit(e)
}
