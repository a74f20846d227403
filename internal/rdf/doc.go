// Package rdf provides the graph values and the read-only graph view that
// the shape compiler consumes.
//
// Term is a sealed interface: only IRI, BlankNode and Literal implement it.
// All three are comparable, so terms can be compared with == and used as map
// keys.
//
// The compiler never writes to a graph. It reads through the Graph
// interface, which exposes exactly three lookups:
//
//	ValueOf(node, property)   first value, if any
//	ValuesOf(node, property)  every value, in insertion order
//	NodesOfType(class)        subjects typed with class, in insertion order
//
// RDF collections (rdf:first / rdf:rest chains) are walked with
// ListElements, which is lenient: a chain that neither continues nor
// terminates in rdf:nil yields the elements read so far together with a
// *MalformedList warning.
package rdf
