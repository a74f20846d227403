// Package harness runs compilation scenarios for shapes graphs.
//
// A scenario names definition documents, compiles every top-level shape
// in them and checks the outcome of selected shapes.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: adult_check
//	description: "Adults are scoped by class and checked by age"
//	definitions:
//	  - shapes/adult.yaml
//	metamodel:            # optional, defaults to the built-in metamodel
//	  - meta/custom.cue
//	options:
//	  max_depth: 16
//	  strict_lists: true
//	abort: DEPTH_EXCEEDED # optional, the run must stop with this code
//	expect:
//	  - shape: ex:AdultShape
//	    scoped: true
//	    contains: ["rdfs:subClassOf*"]
//	    not_contains: ["MINUS"]
//	  - shape: ex:Broken
//	    error: MISSING_ARGUMENT
//	  - shape: ex:Floating
//	    diagnostics: [no-scope]
//
// Definition and metamodel paths are relative to the scenario file.
// Shapes are written as CURIEs over the documents' prefixes or as <iri>.
//
// # Expectations
//
//   - scoped: true requires a query; false requires neither query nor error
//   - contains / not_contains: substrings of the query text
//   - error: the shape was skipped with this compiler error code
//   - diagnostics: exactly these diagnostic kinds, in order
//
// # Deterministic Output
//
// Runs use a fixed run id (scenario.run_id, or the scenario name) so the
// rendered snapshot of a scenario is byte-identical across runs. Golden
// comparison uses goldie; regenerate with:
//
//	go test ./internal/harness -update
package harness
