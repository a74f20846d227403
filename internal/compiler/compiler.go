// Package compiler translates shapes into SPARQL validation queries.
//
// A shape is compiled relative to a Context that says how the focus
// variable ?this is bound. Shapes recurse through filters, partitions and
// templates, each of which may compile further shapes under a derived
// context. Every non-empty shape fragment projects the report columns
// ?this ?message ?severity ?subject ?predicate ?object ?shape, so fragments
// compose by UNION without inspecting each other.
//
// A Compiler is immutable after New and safe for concurrent use; every
// entry point works in a private session.
package compiler

import (
	"io"
	"log/slog"

	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// DefaultMaxDepth bounds shape recursion.
const DefaultMaxDepth = 64

// Compiler compiles shapes from one shapes graph against one metamodel.
type Compiler struct {
	shapes      rdf.Graph
	meta        *metamodel.Metamodel
	maxDepth    int
	strictLists bool
	logger      *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithMaxDepth sets the recursion ceiling. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithStrictLists turns malformed RDF lists into MalformedList errors
// instead of warnings.
func WithStrictLists() Option {
	return func(c *Compiler) {
		c.strictLists = true
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Compiler over shapes using the templates of meta.
func New(shapes rdf.Graph, meta *metamodel.Metamodel, opts ...Option) *Compiler {
	c := &Compiler{
		shapes:   shapes,
		meta:     meta,
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Shapes returns the IRI nodes typed sh:Shape in the shapes graph, in
// graph order. Blank node shapes are reachable only from other shapes.
func (c *Compiler) Shapes() []rdf.Term {
	var out []rdf.Term
	for _, n := range c.shapes.NodesOfType(vocab.Shape) {
		if _, ok := n.(rdf.IRI); ok {
			out = append(out, n)
		}
	}
	return out
}
