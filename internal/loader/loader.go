// Package loader reads shape and metamodel definition documents into a graph.
//
// A document is CUE or YAML with two top-level fields:
//
//	prefixes: { ex: "http://example.org/" }
//	nodes: {
//		"ex:AgeShape": {
//			a:               "sh:Shape"
//			"sh:scopeClass": "ex:Person"
//			"sh:minInclusive": 18
//		}
//	}
//
// Subjects and predicates are "<iri>", "prefix:local" or (subjects only)
// "_:label". Blank node labels are scoped to the document they appear in.
// Object values follow these rules:
//
//   - a string is a node reference when it is "<iri>", "_:label" or a CURIE
//     with a declared prefix; otherwise it is a plain literal
//   - ints are xsd:integer, floats xsd:decimal, bools xsd:boolean
//   - a list gives the property several values
//   - {"@list": [...]} builds an RDF list
//   - {"@value": ..., "@type": ... | "@language": ...} builds a literal
//   - {"@id": ...} forces a node reference
//   - any other struct is a nested blank node
//
// The predicate "a" abbreviates rdf:type. The prefixes sh, rdf, rdfs and xsd
// are predefined.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// Error codes (E300-E309).
const (
	ErrCodeNotFound    = "E301" // file or pattern matched nothing
	ErrCodeParse       = "E302" // CUE or YAML syntax
	ErrCodeStructure   = "E303" // document is not prefixes + nodes
	ErrCodePrefix      = "E304" // undeclared prefix or bad namespace
	ErrCodeNode        = "E305" // subject or predicate is not a node
	ErrCodeValue       = "E306" // unsupported object value
	ErrCodeUnsupported = "E307" // unknown file extension
)

// Position locates a value in a source document. The zero value means
// unknown.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether the position is known.
func (p Position) IsValid() bool { return p.Line > 0 }

// LoadError reports a problem reading a definition document.
type LoadError struct {
	File    string
	Code    string
	Message string
	Pos     Position
}

func (e *LoadError) Error() string {
	switch {
	case e.File != "" && e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Pos.Line, e.Pos.Column, e.Code, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Loader accumulates documents into one graph.
//
// Each document gets its own prefix table and blank node scope; the
// declared prefixes of every document are also collected for display.
type Loader struct {
	graph    *rdf.MemGraph
	prefixes []vocab.Prefix
	declared map[string]string
	docs     int
}

// New creates a Loader with an empty graph.
func New() *Loader {
	l := &Loader{
		graph:    rdf.NewMemGraph(),
		declared: make(map[string]string),
	}
	for _, p := range vocab.StandardPrefixes {
		l.addPrefix(p)
	}
	return l
}

// Graph returns the accumulated graph.
func (l *Loader) Graph() *rdf.MemGraph { return l.graph }

// Prefixes returns every prefix seen so far, standard prefixes first.
// A prefix redeclared with a different namespace keeps its first binding
// here; documents still resolve against their own declarations.
func (l *Loader) Prefixes() []vocab.Prefix {
	out := make([]vocab.Prefix, len(l.prefixes))
	copy(out, l.prefixes)
	return out
}

// ResolveIRI reads s as "<iri>" or as a CURIE over the collected prefixes.
// Any other string containing "://" is taken as an absolute IRI.
func (l *Loader) ResolveIRI(s string) (rdf.IRI, error) {
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) > 2 {
		return rdf.IRI(s[1 : len(s)-1]), nil
	}
	if prefix, local, found := strings.Cut(s, ":"); found && !strings.HasPrefix(local, "//") {
		ns, ok := l.declared[prefix]
		if !ok {
			return "", &LoadError{Code: ErrCodePrefix, Message: fmt.Sprintf("undeclared prefix %q in %q", prefix, s)}
		}
		return rdf.IRI(ns + local), nil
	}
	if strings.Contains(s, "://") {
		return rdf.IRI(s), nil
	}
	return "", &LoadError{Code: ErrCodeNode, Message: fmt.Sprintf("%q is not an <iri> or CURIE", s)}
}

func (l *Loader) addPrefix(p vocab.Prefix) {
	if _, ok := l.declared[p.Name]; ok {
		return
	}
	l.declared[p.Name] = p.Namespace
	l.prefixes = append(l.prefixes, p)
}

// LoadFile reads one document, choosing the format by extension.
func (l *Loader) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{File: path, Code: ErrCodeNotFound, Message: err.Error()}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return l.LoadCUE(path, src)
	case ".yaml", ".yml":
		return l.LoadYAML(path, src)
	default:
		return &LoadError{File: path, Code: ErrCodeUnsupported, Message: "expected a .cue, .yaml or .yml file"}
	}
}

// LoadCUE reads a CUE document. filename is used in error messages.
func (l *Loader) LoadCUE(filename string, src []byte) error {
	root, err := parseCUE(filename, src)
	if err != nil {
		return err
	}
	return l.load(filename, root)
}

// LoadYAML reads a YAML document. filename is used in error messages.
func (l *Loader) LoadYAML(filename string, src []byte) error {
	root, err := parseYAML(filename, src)
	if err != nil {
		return err
	}
	return l.load(filename, root)
}

// load converts root into a scratch graph and merges it only when the whole
// document converted, so a rejected document leaves no triples behind.
func (l *Loader) load(filename string, root *value) error {
	l.docs++
	d := &document{
		file:     filename,
		id:       l.docs,
		graph:    rdf.NewMemGraph(),
		prefixes: make(map[string]string),
	}
	for _, p := range vocab.StandardPrefixes {
		d.prefixes[p.Name] = p.Namespace
	}
	declared, err := d.build(root)
	if err != nil {
		return err
	}
	l.graph.AddAll(d.graph)
	for _, p := range declared {
		l.addPrefix(p)
	}
	return nil
}

// Load expands patterns and reads every matched file into a new graph.
func Load(patterns ...string) (*Loader, error) {
	files, err := ExpandFiles(patterns...)
	if err != nil {
		return nil, err
	}
	l := New()
	for _, f := range files {
		if err := l.LoadFile(f); err != nil {
			return nil, err
		}
	}
	return l, nil
}
