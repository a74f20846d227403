package compiler

import (
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// ConstructKind is the closed set of things a shape can carry besides
// filters.
type ConstructKind int

const (
	// ConstructPartition is an sh:partition list of mutually exclusive cases.
	ConstructPartition ConstructKind = iota
	// ConstructTemplate is a value of a metamodel template property.
	ConstructTemplate
)

func (k ConstructKind) String() string {
	switch k {
	case ConstructPartition:
		return "partition"
	case ConstructTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// Construct is one construct attached to a shape.
type Construct struct {
	Kind     ConstructKind
	Value    rdf.Term
	Template *metamodel.Template
}

// constructs lists what shape carries: partitions first, then template
// instances in metamodel order. Each attached value appears once.
func (c *Compiler) constructs(shape rdf.Term) []Construct {
	var out []Construct
	for _, v := range c.shapes.ValuesOf(shape, vocab.Partition) {
		out = append(out, Construct{Kind: ConstructPartition, Value: v})
	}
	for _, t := range c.meta.Templates() {
		for _, v := range c.shapes.ValuesOf(shape, t.ID) {
			out = append(out, Construct{Kind: ConstructTemplate, Value: v, Template: t})
		}
	}
	return out
}
