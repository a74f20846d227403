// Package queryir is the typed intermediate representation of compiled
// query fragments.
//
// The shape compiler never concatenates query strings directly. It builds
// Select and Pattern values from this package and hands them to the
// querysparql backend, which renders them to text:
//
//	[shape graph] → [compiler] → [queryir] → [querysparql] → SPARQL text
//
// SEALED INTERFACES:
//
// Pattern is a sealed interface using the marker method pattern. Only types
// in this package implement it, so the renderer can switch over them
// exhaustively:
//
//	switch p := pattern.(type) {
//	case Raw:       // opaque text, emitted verbatim
//	case Seq:       // conjunction without extra braces
//	case Group:     // { ... }
//	case Union:     // { a } UNION { b }
//	case Minus:     // { left } MINUS { r1 } MINUS { r2 }
//	case Filter, Bind, Values:
//	case *Select:   // nested sub-select
//	case Fragment:  // an already rendered fragment
//	}
//
// FRAGMENTS:
//
// A Fragment is the unit of composition between compiler stages: rendered
// text plus the columns it projects. Fragments are opaque once produced;
// they are only combined by nesting them into Union, Minus, Seq or a
// sub-select, never re-parsed. Fragments rendered from literal template
// bodies have unknown columns (nil).
//
// Validate checks a Select for generator mistakes (duplicate columns,
// HAVING without GROUP BY, empty projections) before it is rendered.
package queryir
