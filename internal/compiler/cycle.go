package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/shaclq/internal/expr"
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// CycleWarning reports shapes that reach themselves through filters,
// partition cases or shape-valued template arguments.
//
// Compiling such a shape would recurse until the depth ceiling. Cycles are
// warnings because the analysis cannot see every path a template may take.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["<a>", "<b>", "<a>"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeCycles finds reference cycles among the shapes reachable from the
// top-level shapes of the compiler's shapes graph.
//
// The algorithm:
//  1. Build a shape → referenced shapes graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// An acyclic shapes graph returns an empty list.
func (c *Compiler) AnalyzeCycles() []CycleWarning {
	graph := c.buildReferenceGraph()

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// referenceGraph maps shape → shapes it compiles. order fixes iteration so
// results are deterministic.
type referenceGraph struct {
	order []rdf.Term
	edges map[rdf.Term][]rdf.Term
}

func (g *referenceGraph) add(node rdf.Term) bool {
	if _, ok := g.edges[node]; ok {
		return false
	}
	g.edges[node] = []rdf.Term{}
	g.order = append(g.order, node)
	return true
}

func (c *Compiler) buildReferenceGraph() *referenceGraph {
	g := &referenceGraph{edges: make(map[rdf.Term][]rdf.Term)}

	queue := c.Shapes()
	for _, s := range queue {
		g.add(s)
	}
	for len(queue) > 0 {
		shape := queue[0]
		queue = queue[1:]
		for _, ref := range c.references(shape) {
			g.edges[shape] = append(g.edges[shape], ref)
			if g.add(ref) {
				queue = append(queue, ref)
			}
		}
	}
	return g
}

// references lists the shapes compiling shape would compile next.
func (c *Compiler) references(shape rdf.Term) []rdf.Term {
	refs := c.shapes.ValuesOf(shape, vocab.Filter)
	for _, con := range c.constructs(shape) {
		switch con.Kind {
		case ConstructPartition:
			cases, _ := rdf.ListElements(c.shapes, con.Value)
			refs = append(refs, cases...)
		case ConstructTemplate:
			refs = append(refs, c.templateShapeArgs(con.Template, con.Value)...)
		}
	}
	return refs
}

// templateShapeArgs resolves the names a template passes to s() or c().
func (c *Compiler) templateShapeArgs(t *metamodel.Template, arg rdf.Term) []rdf.Term {
	steps := make(map[string][]rdf.IRI, len(t.Args))
	for _, a := range t.Args {
		if a.Name != "" && a.Problem == "" {
			steps[a.Name] = a.Steps
		}
	}
	s := c.newSession()

	var out []rdf.Term
	for _, text := range []string{t.Message, t.Pattern, t.Filter, t.Having, t.Query} {
		parsed, err := expr.Parse(text)
		if err != nil || !parsed.HasSplices() {
			continue
		}
		for _, name := range parsed.ShapeNames() {
			var v rdf.Term
			if name == metamodel.NameArgument {
				v = arg
			} else if st, ok := steps[name]; ok {
				v, _ = s.walk(arg, st)
			}
			if v == nil {
				continue
			}
			if rdf.IsList(c.shapes, v) {
				elems, _ := rdf.ListElements(c.shapes, v)
				out = append(out, elems...)
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node rdf.Term, g *referenceGraph) bool {
	for _, neighbor := range g.edges[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(g *referenceGraph) [][]rdf.Term {
	var (
		index   = 0
		stack   []rdf.Term
		indices = make(map[rdf.Term]int)
		lowlink = make(map[rdf.Term]int)
		onStack = make(map[rdf.Term]bool)
		sccs    [][]rdf.Term
	)

	var strongConnect func(rdf.Term)
	strongConnect = func(v rdf.Term) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []rdf.Term
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
func cycleSCCToWarning(scc []rdf.Term, g *referenceGraph) CycleWarning {
	if len(scc) == 1 {
		id := scc[0].String()
		return CycleWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("Shape references itself: %s → %s", id, id),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, g)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Shape reference cycle: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath follows edges inside the SCC from its first member
// until it returns there.
func reconstructCyclePath(scc []rdf.Term, g *referenceGraph) []string {
	inSCC := make(map[rdf.Term]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[len(scc)-1]
	current := start
	path := []string{current.String()}
	visited := make(map[rdf.Term]bool)

	for {
		visited[current] = true

		var next rdf.Term
		for _, neighbor := range g.edges[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == nil {
			break
		}

		path = append(path, next.String())
		if next == start {
			break
		}
		current = next
	}
	return path
}
