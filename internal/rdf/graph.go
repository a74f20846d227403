package rdf

import "sync"

// Graph is the read-only view of a loaded graph.
//
// Implementations must be safe for concurrent readers; the engine compiles
// independent shapes in parallel against the same Graph.
type Graph interface {
	// ValueOf returns the first value of property on node.
	ValueOf(node Term, property IRI) (Term, bool)

	// ValuesOf returns every value of property on node in insertion order.
	// The returned slice is owned by the caller.
	ValuesOf(node Term, property IRI) []Term

	// NodesOfType returns the subjects typed with class in insertion order.
	NodesOfType(class IRI) []Term
}

// Triple is a single statement.
type Triple struct {
	Subject   Term
	Predicate IRI
	Object    Term
}

type spKey struct {
	subject   Term
	predicate IRI
}

// MemGraph is an insertion-ordered in-memory Graph.
//
// Writes (Add) take an exclusive lock; reads share it. A MemGraph is usually
// filled once by a loader and then only read.
type MemGraph struct {
	mu      sync.RWMutex
	triples []Triple
	seen    map[Triple]struct{}
	values  map[spKey][]Term
	typed   map[IRI][]Term
}

// NewMemGraph creates an empty graph.
func NewMemGraph() *MemGraph {
	return &MemGraph{
		seen:   make(map[Triple]struct{}),
		values: make(map[spKey][]Term),
		typed:  make(map[IRI][]Term),
	}
}

// Add inserts a triple. Duplicates are ignored; the return value reports
// whether the triple was new.
func (g *MemGraph) Add(subject Term, predicate IRI, object Term) bool {
	t := Triple{Subject: subject, Predicate: predicate, Object: object}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, dup := g.seen[t]; dup {
		return false
	}
	g.seen[t] = struct{}{}
	g.triples = append(g.triples, t)

	key := spKey{subject: subject, predicate: predicate}
	g.values[key] = append(g.values[key], object)

	if predicate == Type {
		if class, ok := object.(IRI); ok {
			g.typed[class] = append(g.typed[class], subject)
		}
	}
	return true
}

// AddAll inserts every triple of other, preserving its order.
func (g *MemGraph) AddAll(other *MemGraph) {
	for _, t := range other.Triples() {
		g.Add(t.Subject, t.Predicate, t.Object)
	}
}

// Len returns the number of distinct triples.
func (g *MemGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}

// Triples returns a copy of all triples in insertion order.
func (g *MemGraph) Triples() []Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

func (g *MemGraph) ValueOf(node Term, property IRI) (Term, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	vals := g.values[spKey{subject: node, predicate: property}]
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

func (g *MemGraph) ValuesOf(node Term, property IRI) []Term {
	g.mu.RLock()
	defer g.mu.RUnlock()
	vals := g.values[spKey{subject: node, predicate: property}]
	if len(vals) == 0 {
		return nil
	}
	out := make([]Term, len(vals))
	copy(out, vals)
	return out
}

func (g *MemGraph) NodesOfType(class IRI) []Term {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := g.typed[class]
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Term, len(nodes))
	copy(out, nodes)
	return out
}
