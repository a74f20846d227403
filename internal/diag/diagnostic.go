package diag

import (
	"fmt"

	"github.com/roach88/shaclq/internal/rdf"
)

// Kind names a non-fatal condition.
type Kind string

const (
	// KindNoScope: the shape declares no scope and yields no query.
	KindNoScope Kind = "no-scope"

	// KindNoConstructs: the shape has no partition or template instance and
	// compiles to the no-op fragment.
	KindNoConstructs Kind = "no-constructs"

	// KindMalformedList: a list was read leniently.
	KindMalformedList Kind = "malformed-list"

	// KindEmptyPath: a path spliced into a template rendered empty.
	KindEmptyPath Kind = "empty-path"
)

// Diagnostic is a warning attached to a compilation result.
type Diagnostic struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Shape   rdf.Term `json:"-"`
}

func (d Diagnostic) String() string {
	if d.Shape != nil {
		return fmt.Sprintf("%s: %s (shape=%s)", d.Kind, d.Message, d.Shape)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Collector accumulates diagnostics for one compilation. Not safe for
// concurrent use; each compilation owns its own.
type Collector struct {
	items []Diagnostic
}

// Add records a diagnostic.
func (c *Collector) Add(kind Kind, shape rdf.Term, format string, args ...any) {
	c.items = append(c.items, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Shape: shape})
}

// Items returns the recorded diagnostics in order.
func (c *Collector) Items() []Diagnostic {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many diagnostics of kind were recorded.
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, d := range c.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
