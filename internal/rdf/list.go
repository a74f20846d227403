package rdf

import "fmt"

// MalformedList reports an RDF list that could not be walked to rdf:nil.
// It is a warning: ListElements still returns the elements read before the
// break.
type MalformedList struct {
	Head   Term   // first cell of the list
	At     Term   // cell where the walk stopped
	Reason string // "missing rdf:first", "missing rdf:rest", "cycle"
	Read   int    // number of elements read before the break
}

func (m *MalformedList) Error() string {
	return fmt.Sprintf("malformed list %s: %s at %s after %d element(s)", m.Head, m.Reason, m.At, m.Read)
}

// IsList reports whether node is rdf:nil or a list cell.
func IsList(g Graph, node Term) bool {
	if node == nil {
		return false
	}
	if node == Term(Nil) {
		return true
	}
	if _, ok := g.ValueOf(node, Rest); ok {
		return true
	}
	_, ok := g.ValueOf(node, First)
	return ok
}

// ListElements walks the rdf:first / rdf:rest chain starting at head.
//
// A well-formed list returns all elements and a nil warning. A chain that
// stops without reaching rdf:nil, or that loops back on itself, returns the
// elements read so far and a *MalformedList.
func ListElements(g Graph, head Term) ([]Term, *MalformedList) {
	var elems []Term
	seen := make(map[Term]struct{})

	cell := head
	for cell != nil && cell != Term(Nil) {
		if _, loop := seen[cell]; loop {
			return elems, &MalformedList{Head: head, At: cell, Reason: "cycle", Read: len(elems)}
		}
		seen[cell] = struct{}{}

		first, ok := g.ValueOf(cell, First)
		if !ok {
			return elems, &MalformedList{Head: head, At: cell, Reason: "missing rdf:first", Read: len(elems)}
		}
		elems = append(elems, first)

		rest, ok := g.ValueOf(cell, Rest)
		if !ok {
			return elems, &MalformedList{Head: head, At: cell, Reason: "missing rdf:rest", Read: len(elems)}
		}
		cell = rest
	}
	return elems, nil
}
