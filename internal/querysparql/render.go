// Package querysparql renders queryir values, graph terms and property
// paths to SPARQL text.
package querysparql

import (
	"strings"

	"github.com/roach88/shaclq/internal/queryir"
)

// Build renders sel and returns it as a fragment carrying its columns.
func Build(sel *queryir.Select) queryir.Fragment {
	return queryir.Fragment{Text: Render(sel), Columns: sel.Columns()}
}

// Render converts a Select to SPARQL text.
//
// Layout:
//
//	# comment
//	SELECT [DISTINCT] projection
//	WHERE { body }
//	GROUP BY vars HAVING ( expr )
func Render(sel *queryir.Select) string {
	var b strings.Builder
	if sel.Comment != "" {
		b.WriteString("# ")
		b.WriteString(sel.Comment)
		b.WriteByte('\n')
	}

	b.WriteString("SELECT ")
	if sel.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(projection(sel.Projection))

	b.WriteString("\nWHERE { ")
	if body := block(sel.Where); body != "" {
		b.WriteString(body)
		b.WriteByte(' ')
	}
	b.WriteByte('}')

	if len(sel.GroupBy) > 0 {
		b.WriteString("\nGROUP BY ")
		b.WriteString(varList(sel.GroupBy))
	}
	if sel.Having != "" {
		b.WriteString(" HAVING ( ")
		b.WriteString(sel.Having)
		b.WriteString(" )")
	}
	return b.String()
}

// RenderPattern renders p as it would appear inside a group.
func RenderPattern(p queryir.Pattern) string {
	return pattern(p)
}

func projection(ps []queryir.Projection) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		if p.Expr == "" {
			parts[i] = queryir.Var(p.Var)
		} else {
			parts[i] = "(" + p.Expr + " AS " + queryir.Var(p.Var) + ")"
		}
	}
	return strings.Join(parts, " ")
}

func varList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = queryir.Var(n)
	}
	return strings.Join(parts, " ")
}

// block renders p as the content of an enclosing pair of braces.
func block(p queryir.Pattern) string {
	switch pat := p.(type) {
	case nil:
		return ""
	case queryir.Seq:
		return joinPatterns(pat)
	case queryir.Group:
		return joinPatterns(pat)
	case queryir.Minus:
		return minus(pat)
	case *queryir.Select:
		return Render(pat)
	case queryir.Fragment:
		return strings.TrimSpace(pat.Text)
	default:
		return pattern(p)
	}
}

// pattern renders p in sequence position.
func pattern(p queryir.Pattern) string {
	switch pat := p.(type) {
	case nil:
		return ""
	case queryir.Raw:
		return strings.TrimSpace(string(pat))
	case queryir.Seq:
		return joinPatterns(pat)
	case queryir.Group:
		return "{ " + withSpace(joinPatterns(pat)) + "}"
	case queryir.Union:
		branches := make([]string, 0, len(pat))
		for _, br := range pat {
			branches = append(branches, "{ "+withSpace(block(br))+"}")
		}
		return strings.Join(branches, "\nUNION\n")
	case queryir.Minus:
		if len(pat.Right) == 0 {
			return "{ " + withSpace(block(pat.Left)) + "}"
		}
		return "{ " + minus(pat) + " }"
	case queryir.Filter:
		return "FILTER ( " + pat.Expr + " )"
	case queryir.Bind:
		return "BIND ( " + pat.Expr + " AS " + queryir.Var(pat.Var) + " )"
	case queryir.Values:
		return values(pat)
	case *queryir.Select:
		return "{ " + Render(pat) + " }"
	case queryir.Fragment:
		return "{ " + strings.TrimSpace(pat.Text) + " }"
	default:
		return ""
	}
}

func minus(m queryir.Minus) string {
	var b strings.Builder
	b.WriteString("{ ")
	b.WriteString(withSpace(block(m.Left)))
	b.WriteByte('}')
	for _, r := range m.Right {
		b.WriteString("\nMINUS { ")
		b.WriteString(withSpace(block(r)))
		b.WriteByte('}')
	}
	return b.String()
}

func values(v queryir.Values) string {
	var b strings.Builder
	b.WriteString("VALUES ( ")
	b.WriteString(varList(v.Vars))
	b.WriteString(" ) {")
	for _, row := range v.Rows {
		b.WriteString(" ( ")
		b.WriteString(strings.Join(row, " "))
		b.WriteString(" )")
	}
	b.WriteString(" }")
	return b.String()
}

func joinPatterns(ps []queryir.Pattern) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		if s := pattern(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// withSpace appends a separating space to non-empty text.
func withSpace(s string) string {
	if s == "" {
		return ""
	}
	return s + " "
}
