// Package vocab holds the IRIs of the shape and template vocabulary.
//
// These names are an external contract: shape and metamodel documents are
// written against them, so they must not be renamed.
package vocab

import "github.com/roach88/shaclq/internal/rdf"

// Namespace is the SHACL namespace.
const Namespace = "http://www.w3.org/ns/shacl#"

// Classes.
const (
	Shape             rdf.IRI = Namespace + "Shape"
	ComponentTemplate rdf.IRI = Namespace + "ComponentTemplate"
)

// Severities.
const (
	Severity  rdf.IRI = Namespace + "severity"
	Info      rdf.IRI = Namespace + "Info"
	Warning   rdf.IRI = Namespace + "Warning"
	Violation rdf.IRI = Namespace + "Violation"
)

// Shape structure.
const (
	Filter    rdf.IRI = Namespace + "filter"
	Partition rdf.IRI = Namespace + "partition"
)

// Scope declarations.
const (
	ScopeNode            rdf.IRI = Namespace + "scopeNode"
	ScopeClass           rdf.IRI = Namespace + "scopeClass"
	ScopePropertyObject  rdf.IRI = Namespace + "scopePropertyObject"
	ScopePropertySubject rdf.IRI = Namespace + "scopePropertySubject"
	ScopeAllObjects      rdf.IRI = Namespace + "scopeAllObjects"
	ScopeAllSubjects     rdf.IRI = Namespace + "scopeAllSubjects"
	ScopeSPARQL          rdf.IRI = Namespace + "scopeSPARQL"
)

// Template definitions.
const (
	PropValues       rdf.IRI = Namespace + "propValues"
	ArgumentName     rdf.IRI = Namespace + "argumentName"
	ArgumentDefault  rdf.IRI = Namespace + "argumentDefault"
	ArgumentRequired rdf.IRI = Namespace + "argumentRequired"
	TemplateMessage  rdf.IRI = Namespace + "templateMessage"
	TemplatePattern  rdf.IRI = Namespace + "templatePattern"
	TemplateFilter   rdf.IRI = Namespace + "templateFilter"
	TemplateHaving   rdf.IRI = Namespace + "templateHaving"
	TemplateQuery    rdf.IRI = Namespace + "templateQuery"
)

// Property paths.
const (
	Inverse         rdf.IRI = Namespace + "inverse"
	AlternativePath rdf.IRI = Namespace + "alternativePath"
	ZeroOrMorePath  rdf.IRI = Namespace + "zeroOrMorePath"
	OneOrMorePath   rdf.IRI = Namespace + "oneOrMorePath"
	ZeroOrOnePath   rdf.IRI = Namespace + "zeroOrOnePath"
)

// Prefix is a namespace binding.
type Prefix struct {
	Name      string
	Namespace string
}

// StandardPrefixes are declared at the top of every compiled query and are
// predefined for definition documents.
var StandardPrefixes = []Prefix{
	{Name: "sh", Namespace: Namespace},
	{Name: "rdf", Namespace: rdf.RDFNamespace},
	{Name: "rdfs", Namespace: rdf.RDFSNamespace},
	{Name: "xsd", Namespace: rdf.XSDNamespace},
}
